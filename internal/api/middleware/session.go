package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type sessionContextKey string

const SessionKey = sessionContextKey("session")

// SessionMiddleware gives every visitor an anonymous session. The session ID
// travels in a signed cookie; a missing, tampered or expired cookie starts a
// new session.
type SessionMiddleware struct {
	signingKey []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewSessionMiddleware(signingKey []byte, cookieName string, ttl time.Duration, secure bool) *SessionMiddleware {
	return &SessionMiddleware{
		signingKey: signingKey,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		now:        time.Now,
	}
}

func (m *SessionMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		sessionID, err := m.sessionFromRequest(r)
		if err != nil {
			sessionID = uuid.NewString()

			token, err := m.Issue(sessionID)
			if err != nil {
				logger.Error("Failed to issue session", "error", err)
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     m.cookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(m.ttl.Seconds()),
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})

			logger.Debug("Started a new session")
		}

		ctx := context.WithValue(r.Context(), SessionKey, sessionID)
		ctx = WithLogger(ctx, logger.With("session_id", sessionID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Issue signs a session token for sessionID.
func (m *SessionMiddleware) Issue(sessionID string) (string, error) {
	now := m.now()

	claims := &models.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
}

func (m *SessionMiddleware) sessionFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", err
	}

	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		// check the signing method
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", err
	}

	if !token.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session token")
	}

	return claims.SessionID, nil
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionKey).(string)
	return sessionID, ok && sessionID != ""
}
