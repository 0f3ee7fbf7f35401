package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/cache"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils/response"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/backend"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[string]*models.Product

func (c fakeCatalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	product, ok := c[id]
	if !ok {
		return nil, backend.ErrProductNotFound
	}

	return product, nil
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		"p1": {ID: "p1", Title: "Desk lamp", Price: 2000, Images: []string{"lamp.jpg"}, SellerID: "s1", SellerName: "Nimal"},
		"p2": {ID: "p2", Title: "Bookshelf", Price: 7500, SellerID: "s2", SellerName: "Kumari"},
	}
}

// controlledPlacer blocks each order until released, when gate is set.
type controlledPlacer struct {
	mu      sync.Mutex
	err     error
	gate    chan struct{}
	started chan struct{}
	orders  []models.OrderRequest
}

func (p *controlledPlacer) PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	p.mu.Lock()
	err, gate, started := p.err, p.gate, p.started
	p.orders = append(p.orders, req)
	p.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	return &models.Order{ID: "order-1", Items: req.Items, Summary: req.Summary, Status: models.OrderStatusPending}, nil
}

func (p *controlledPlacer) placed() []models.OrderRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.OrderRequest(nil), p.orders...)
}

// heldCatalog holds lookups of one product until released.
type heldCatalog struct {
	fakeCatalog
	heldID  string
	entered chan struct{}
	release chan struct{}
}

func newHeldCatalog(heldID string) *heldCatalog {
	return &heldCatalog{
		fakeCatalog: testCatalog(),
		heldID:      heldID,
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
}

func (c *heldCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if id == c.heldID {
		c.entered <- struct{}{}
		<-c.release
	}
	return c.fakeCatalog.GetProduct(ctx, id)
}

func (p *controlledPlacer) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

type envelope struct {
	Success bool                    `json:"success"`
	Data    json.RawMessage         `json:"data"`
	Error   *response.ErrorResponse `json:"error"`
}

type cartBody struct {
	Items     []models.CartLineItem `json:"items"`
	Summary   models.CartSummary    `json:"summary"`
	Formatted map[string]string     `json:"formatted"`
}

type checkoutBody struct {
	Step            models.CheckoutStep     `json:"step"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   map[string]any          `json:"paymentMethod"`
	Summary         models.CartSummary      `json:"summary"`
	LastError       *models.CheckoutError   `json:"lastError"`
}

type storefront struct {
	server *httptest.Server
	client *http.Client
	placer *controlledPlacer
}

func setupStorefront(t *testing.T) *storefront {
	t.Helper()
	return setupStorefrontWith(t, testCatalog(), config.CartStoreCookie)
}

func setupStorefrontWith(t *testing.T, catalog service.ProductCatalog, store string) *storefront {
	t.Helper()

	cfg := &config.Config{
		Session: config.Session{SigningKey: "test-key", CookieName: "sid", TTL: time.Hour},
		Cart: config.Cart{
			Store:        store,
			CookieName:   "cart",
			MaxAge:       7 * 24 * time.Hour,
			WriteTimeout: time.Second,
		},
	}

	c, err := cache.NewMemoryCache(&config.CacheConfig{MemoryMaxEntries: 100})
	require.NoError(t, err)

	placer := &controlledPlacer{}
	registry := service.NewCheckoutRegistry(100, time.Hour)
	checkoutService := service.NewCheckoutService(registry, service.NewDraftStore(c, time.Hour),
		service.NewCheckoutValidator(), service.NewOrderSubmitter(placer, 5*time.Second), nil)
	cartService := service.NewCartService(catalog, registry)
	loader := handlers.NewCartLoader(cfg, c, nil, registry)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux,
		handlers.NewCartHandler(cartService, loader),
		handlers.NewCheckoutHandler(checkoutService, loader),
		handlers.NewAuthHandler(service.NewAuthService(new(mockBackend), nil)),
	)

	sessions := middleware.NewSessionMiddleware([]byte(cfg.Session.SigningKey), cfg.Session.CookieName, cfg.Session.TTL, false)
	server := httptest.NewServer(sessions.Handle(mux))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &storefront{server: server, client: &http.Client{Jar: jar}, placer: placer}
}

func (s *storefront) call(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req, err := http.NewRequest(method, s.server.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))

	return out
}

func sampleAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName:     "Nimal Perera",
		Phone:        "+94 77 123 4567",
		AddressLine1: "12 Galle Road",
		City:         "Colombo",
		PostalCode:   "00300",
		Country:      "Sri Lanka",
	}
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockBackend) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}
