// Package rest implements domain.ListingRepository over the marketplace
// JSON API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/vizinho/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Vizinho/1.0"

	// HeaderRequestID correlates client and server logs.
	HeaderRequestID = "X-Request-ID"
	// HeaderUserID names the resident on whose behalf a request is made.
	HeaderUserID = "X-User-ID"
)

// Client implements domain.ListingRepository
type Client struct {
	baseURL    string
	token      string
	userID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Options configures a Client.
type Options struct {
	Token   string
	UserID  string
	Timeout time.Duration
	Logger  *slog.Logger

	// HTTPClient replaces the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      opts.Token,
		userID:     opts.UserID,
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set(HeaderUserID, c.userID)
	}

	c.logger.Debug("api request", "method", method, "url", reqURL, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("api request failed", "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, errors.Join(domain.ErrRepository, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", errors.Join(domain.ErrRepository, err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s %s: %w", method, path, domain.ErrForbidden)
	case resp.StatusCode == http.StatusConflict:
		return nil, fmt.Errorf("%s %s: %s: %w", method, path, errorMessage(respBody), domain.ErrDuplicateCondominium)
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%s %s: %s: %w", method, path, errorMessage(respBody), domain.ErrValidation)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, path, errors.Join(domain.ErrNotFound, domain.ErrRepository))
	case resp.StatusCode >= 400:
		c.logger.Error("api request error", "request_id", requestID, "status", resp.StatusCode, "body", errorMessage(respBody))
		return nil, fmt.Errorf("%s %s: unexpected status code %d: %w", method, path, resp.StatusCode, domain.ErrRepository)
	}

	return respBody, nil
}

func errorMessage(body []byte) string {
	var e ErrorResponse
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.parse(body, dest)
}

func (c *Client) parse(body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", errors.Join(domain.ErrRepository, err))
	}
	return nil
}

// Search returns the listings matching q
func (c *Client) Search(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
	var resp ListingsResponse
	if err := c.getJSON(ctx, "/api/listings", EncodeQuery(q), &resp); err != nil {
		return nil, err
	}
	return MapListings(resp.Listings), nil
}

// MaxObservedPrice returns the highest listed price
func (c *Client) MaxObservedPrice(ctx context.Context) (float64, error) {
	var resp MaxPriceResponse
	if err := c.getJSON(ctx, "/api/listings/max-price", nil, &resp); err != nil {
		return 0, err
	}
	return resp.MaxPrice, nil
}

func (c *Client) FetchStates(ctx context.Context) ([]domain.LocationOption, error) {
	return c.locations(ctx, "/api/states")
}

func (c *Client) FetchCitiesByState(ctx context.Context, stateID string) ([]domain.LocationOption, error) {
	return c.locations(ctx, "/api/states/"+url.PathEscape(stateID)+"/cities")
}

func (c *Client) FetchCondominiumsByCity(ctx context.Context, cityID string) ([]domain.LocationOption, error) {
	return c.locations(ctx, "/api/cities/"+url.PathEscape(cityID)+"/condominiums")
}

func (c *Client) locations(ctx context.Context, path string) ([]domain.LocationOption, error) {
	var resp LocationsResponse
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return MapLocations(resp.Items), nil
}

// SuggestCondominium submits a pending condominium and returns its id
func (c *Client) SuggestCondominium(ctx context.Context, cityID, name, address string) (string, error) {
	path := "/api/cities/" + url.PathEscape(cityID) + "/condominiums"
	body, err := c.doRequest(ctx, http.MethodPost, path, nil, SuggestRequest{Name: name, Address: address})
	if err != nil {
		return "", err
	}
	var resp SuggestResponse
	if err := c.parse(body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("suggest condominium: empty id: %w", domain.ErrRepository)
	}
	return resp.ID, nil
}
