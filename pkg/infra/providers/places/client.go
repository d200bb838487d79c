package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/infra/httpx"
)

const (
	poiPath   = "/v1/places/search"
	staysPath = "/v1/lodging/search"
)

var ErrProviderCall = errors.New("places provider call failed")

type Place struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Rating   float64 `json:"rating"`
	Address  string  `json:"address"`
}

type Stay struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	PricePerNight float64 `json:"price_per_night"`
	Currency      string  `json:"currency"`
	Rating        float64 `json:"rating"`
	Address       string  `json:"address"`
}

type POIQuery struct {
	Location string
	Category string
	Limit    int
}

type StaysQuery struct {
	Location string
	CheckIn  string
	CheckOut string
	Guests   int
	Limit    int
}

type Client interface {
	SearchPOI(ctx context.Context, query POIQuery) ([]Place, error)
	SearchStays(ctx context.Context, query StaysQuery) ([]Stay, error)
}

type client struct {
	httpClient     httpx.Client
	logger         *logrus.Logger
	circuitBreaker httpx.CircuitBreaker
	baseURL        string
	apiKey         string
}

func NewClient(
	httpClient httpx.Client,
	logger *logrus.Logger,
	circuitBreaker httpx.CircuitBreaker,
	baseURL, apiKey string,
) Client {
	return &client{
		httpClient:     httpClient,
		logger:         logger,
		circuitBreaker: circuitBreaker,
		baseURL:        baseURL,
		apiKey:         apiKey,
	}
}

func (c *client) SearchPOI(ctx context.Context, query POIQuery) ([]Place, error) {
	params := url.Values{}
	params.Set("location", query.Location)
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	var out struct {
		Places []Place `json:"places"`
	}
	if err := c.get(ctx, poiPath, params, &out); err != nil {
		return nil, err
	}
	return out.Places, nil
}

func (c *client) SearchStays(ctx context.Context, query StaysQuery) ([]Stay, error) {
	params := url.Values{}
	params.Set("location", query.Location)
	if query.CheckIn != "" {
		params.Set("check_in", query.CheckIn)
	}
	if query.CheckOut != "" {
		params.Set("check_out", query.CheckOut)
	}
	if query.Guests > 0 {
		params.Set("guests", strconv.Itoa(query.Guests))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	var out struct {
		Stays []Stay `json:"stays"`
	}
	if err := c.get(ctx, staysPath, params, &out); err != nil {
		return nil, err
	}
	return out.Stays, nil
}

func (c *client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	err := c.circuitBreaker.Execute(func() error {
		return c.executeGet(ctx, path, params, out)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).WithField("path", path).Error("places provider call failed")
		}
		return fmt.Errorf("%w: %v", ErrProviderCall, err)
	}
	return nil
}

func (c *client) executeGet(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+path+"?"+params.Encode(),
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, zstd")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
