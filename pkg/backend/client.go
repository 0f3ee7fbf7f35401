package backend

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

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrLoginRejected   = errors.New("login rejected")
	ErrUnavailable     = errors.New("backend unavailable")
)

// Client is the storefront's view of the marketplace backend API.
type Client interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

type Options struct {
	Timeout time.Duration
	// consecutive failures before the breaker opens
	MaxFailures uint32
	// how long the breaker stays open before letting a trial request through
	OpenStateWindow time.Duration
	Transport       http.RoundTripper
}

type httpClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func NewClient(baseURL string, opts Options) Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "backend",
		Timeout: opts.OpenStateWindow,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		breaker: breaker,
	}
}

func (c *httpClient) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/user/login", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var loginResp models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	if !loginResp.Status {
		return &loginResp, ErrLoginRejected
	}

	return &loginResp, nil
}

type productEnvelope struct {
	Status bool            `json:"status"`
	Data   *models.Product `json:"data"`
}

func (c *httpClient) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	resp, err := c.do(ctx, http.MethodGet, "/product/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}

	if !envelope.Status || envelope.Data == nil || envelope.Data.ID == "" {
		return nil, ErrProductNotFound
	}

	return envelope.Data, nil
}

// do sends the request through the breaker. Transport errors and 5xx replies
// count as failures; anything else is handed back to the caller.
func (c *httpClient) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("%s %s returned %d", method, path, resp.StatusCode)
		}

		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return resp, nil
}
