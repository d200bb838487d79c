package httpx

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fasthttp"
)

// DecodeBody decompresses a provider response according to its
// Content-Encoding header. Only gzip and zstd are handled; those are the
// encodings our clients negotiate, and anything else is an error. Returns
// the decoded body and whether it changed.
func DecodeBody(resp *fasthttp.Response, body []byte) ([]byte, bool, error) {
	ce := string(resp.Header.Peek("Content-Encoding"))
	if ce == "" {
		return body, false, nil
	}

	changed := false
	encodings := strings.Split(ce, ",")
	for i := len(encodings) - 1; i >= 0; i-- {
		switch strings.TrimSpace(strings.ToLower(encodings[i])) {
		case "gzip":
			gr, err := gzip.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, false, err
			}
			out, err := io.ReadAll(gr)
			cerr := gr.Close()
			if err != nil {
				return nil, false, err
			}
			if cerr != nil {
				return nil, false, cerr
			}
			body = out
			changed = true
		case "zstd":
			dec, err := zstd.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, false, err
			}
			out, err := io.ReadAll(dec.IOReadCloser())
			dec.Close()
			if err != nil {
				return nil, false, err
			}
			body = out
			changed = true
		case "identity", "":
			// nothing to do
		default:
			// Returning compressed bytes as if decoded would poison the
			// caller's JSON decode; fail loudly instead.
			return nil, false, fmt.Errorf("unsupported content encoding %q", strings.TrimSpace(encodings[i]))
		}
	}
	return body, changed, nil
}
