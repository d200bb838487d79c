package httpx_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripwise-ai/tripwise/pkg/infra/httpx"
)

func TestFastHTTPClient_CanceledContextStopsCall(t *testing.T) {
	client := httpx.NewFastHTTPClient(httpx.WithTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nothing listens on this address; a canceled context must surface
	// before any dial is attempted.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:1/", nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFastHTTPClient_ExpiredDeadlineStopsCall(t *testing.T) {
	client := httpx.NewFastHTTPClient(httpx.WithTimeout(time.Second))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:1/", nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
