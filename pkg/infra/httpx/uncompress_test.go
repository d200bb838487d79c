package httpx_test

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripwise-ai/tripwise/pkg/infra/httpx"
	"github.com/valyala/fasthttp"
)

func gzipBytes(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, payload []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	out := enc.EncodeAll(payload, nil)
	require.NoError(t, enc.Close())
	return out
}

func TestDecodeBody_PassthroughWithoutEncoding(t *testing.T) {
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	body, changed, err := httpx.DecodeBody(resp, []byte("plain"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []byte("plain"), body)
}

func TestDecodeBody_Gzip(t *testing.T) {
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)
	resp.Header.Set("Content-Encoding", "gzip")

	body, changed, err := httpx.DecodeBody(resp, gzipBytes(t, []byte(`{"ok":true}`)))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []byte(`{"ok":true}`), body)
}

func TestDecodeBody_Zstd(t *testing.T) {
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)
	resp.Header.Set("Content-Encoding", "zstd")

	body, changed, err := httpx.DecodeBody(resp, zstdBytes(t, []byte(`{"ok":true}`)))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []byte(`{"ok":true}`), body)
}

func TestDecodeBody_UnsupportedEncoding(t *testing.T) {
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)
	resp.Header.Set("Content-Encoding", "br")

	_, _, err := httpx.DecodeBody(resp, []byte("brotli payload"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "br")
}

func TestDecodeBody_CorruptGzip(t *testing.T) {
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)
	resp.Header.Set("Content-Encoding", "gzip")

	_, _, err := httpx.DecodeBody(resp, []byte("not gzip at all"))
	assert.Error(t, err)
}
