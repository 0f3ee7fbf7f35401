package service

import (
	"context"
	"errors"
	"fmt"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-checkout/internal/repositories"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/backend"
)

type LoginBackend interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// AuthService proxies logins to the marketplace backend. Attempts are
// throttled per e-mail address when a limiter is configured.
type AuthService struct {
	backend LoginBackend
	limiter repository.LoginRateLimiter
}

func NewAuthService(b LoginBackend, limiter repository.LoginRateLimiter) *AuthService {
	return &AuthService{backend: b, limiter: limiter}
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	if s.limiter != nil {
		allowed, _, retryAfter, err := s.limiter.CheckLoginRateLimit(ctx, req.Email)
		if err != nil {
			return nil, appErrors.ThirdPartyError("Rate limit check failed").WithError(err)
		}

		if !allowed {
			return nil, appErrors.TooManyRequestsError("Too many login attempts. Please try again later.").
				WithDetail(fmt.Sprintf("retry after %d seconds", retryAfter))
		}
	}

	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		if errors.Is(err, backend.ErrLoginRejected) {
			message := "Invalid email or password"
			if resp != nil && resp.Message != "" {
				message = resp.Message
			}
			return nil, appErrors.UnauthorizedError(message).WithError(err)
		}

		return nil, appErrors.ThirdPartyError("Login is unavailable right now").WithError(err)
	}

	return resp, nil
}
