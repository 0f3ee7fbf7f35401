package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
)

// Browsers drop cookies larger than this.
const MaxCookieValueSize = 4096

// CartSavedHeader is set to "false" on a response whose cart could not be
// stored in the cookie. The browser keeps the last cart that fit.
const CartSavedHeader = "X-Cart-Saved"

type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// CookieCartStore keeps the cart in a cookie on the buyer's browser. It is
// bound to one request/response pair.
type CookieCartStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions
	now  func() time.Time
}

func NewCookieCartStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieCartStore {
	return &CookieCartStore{w: w, r: r, opts: opts, now: time.Now}
}

func (s *CookieCartStore) Load(_ context.Context) ([]models.CartLineItem, error) {
	cookie, err := s.r.Cookie(s.opts.Name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read cart cookie: %w", err)
	}

	raw, err := url.PathUnescape(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	return DecodeRecord([]byte(raw))
}

func (s *CookieCartStore) Save(_ context.Context, items []models.CartLineItem) error {
	data, err := EncodeRecord(items)
	if err != nil {
		return err
	}

	value := url.PathEscape(string(data))
	if len(value) > MaxCookieValueSize {
		s.w.Header().Set(CartSavedHeader, "false")
		return fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(value))
	}

	s.dropPending()
	s.w.Header().Del(CartSavedHeader)

	http.SetCookie(s.w, &http.Cookie{
		Name:     s.opts.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.opts.MaxAge.Seconds()),
		Expires:  s.now().Add(s.opts.MaxAge),
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// dropPending removes a cart cookie already queued on this response so that
// only the latest state is sent.
func (s *CookieCartStore) dropPending() {
	header := s.w.Header()
	prefix := s.opts.Name + "="

	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}

	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}
}
