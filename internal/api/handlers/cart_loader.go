package handlers

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/cache"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	repository "github.com/aaravmahajanofficial/storefront-checkout/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
)

// CartLocker hands out the per-session lock that cart changes hold.
type CartLocker interface {
	LockCart(ctx context.Context, sessionID string) (*service.CartLease, error)
}

// CartLoader builds the buyer's cart for one request: it picks the record
// store the deployment is configured for and hydrates from it.
type CartLoader struct {
	cfg    *config.Config
	cache  cache.Cache
	db     *sql.DB
	locker CartLocker
}

func NewCartLoader(cfg *config.Config, c cache.Cache, db *sql.DB, locker CartLocker) *CartLoader {
	return &CartLoader{cfg: cfg, cache: c, db: db, locker: locker}
}

type cartSession struct {
	id          string
	cart        *service.CartStore
	persistence *service.PersistenceAdapter
	lease       *service.CartLease
}

// Load builds the cart for a request that only reads it.
func (l *CartLoader) Load(w http.ResponseWriter, r *http.Request) (*cartSession, error) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		return nil, appErrors.UnauthorizedError("Session required")
	}

	session := l.open(w, r, sessionID)
	session.persistence.Hydrate(r.Context(), session.cart)

	return session, nil
}

// LoadForUpdate builds the cart for a request that changes it. The session's
// cart lock is held until done, and the cart is read only once it is held.
func (l *CartLoader) LoadForUpdate(w http.ResponseWriter, r *http.Request) (*cartSession, error) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		return nil, appErrors.UnauthorizedError("Session required")
	}

	var lease *service.CartLease
	if l.locker != nil {
		var err error
		if lease, err = l.locker.LockCart(r.Context(), sessionID); err != nil {
			return nil, err
		}
	}

	session := l.open(w, r, sessionID)
	session.lease = lease

	if lease != nil && lease.Stale() {
		// the request carried a cart from before the order emptied it
		session.persistence.Discard(r.Context(), session.cart)
	} else {
		session.persistence.Hydrate(r.Context(), session.cart)
	}

	return session, nil
}

func (l *CartLoader) open(w http.ResponseWriter, r *http.Request, sessionID string) *cartSession {
	logger := middleware.LoggerFromContext(r.Context())

	var persistence *service.PersistenceAdapter

	switch l.cfg.Cart.Store {
	case config.CartStoreRedis:
		store := repository.NewSessionCartStore(l.cache, sessionID, l.cfg.Cart.MaxAge)
		persistence = service.NewPersistenceAdapter(store, logger, service.WithAsyncWrites(l.cfg.Cart.WriteTimeout))
	case config.CartStorePostgres:
		store := repository.NewPostgresCartStore(l.db, sessionID, l.cfg.Cart.MaxAge)
		persistence = service.NewPersistenceAdapter(store, logger, service.WithAsyncWrites(l.cfg.Cart.WriteTimeout))
	default:
		store := repository.NewCookieCartStore(w, r, repository.CookieOptions{
			Name:   l.cfg.Cart.CookieName,
			MaxAge: l.cfg.Cart.MaxAge,
			Secure: l.cfg.Session.SecureCookies,
		})
		persistence = service.NewPersistenceAdapter(store, logger)
	}

	return &cartSession{id: sessionID, cart: service.NewCartStore(), persistence: persistence}
}

// done sends the response and then waits for background cart writes, so
// the next request from the same buyer reads what this one wrote. The cart
// lock is released last.
func (s *cartSession) done(w http.ResponseWriter) {
	_ = http.NewResponseController(w).Flush()
	s.persistence.Wait()

	if s.lease != nil {
		s.lease.Release()
	}
}

// orderPlaced tells requests waiting on this cart that their copy is gone.
func (s *cartSession) orderPlaced() {
	if s.lease != nil {
		s.lease.OrderPlaced()
	}
}
