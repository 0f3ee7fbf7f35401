package health

import (
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

// NewHealthHandler reports on the dependencies this deployment actually
// uses: Postgres only for the postgres cart store, Redis only when configured.
func NewHealthHandler(cfg *config.Config, version string) (*health.Health, error) {

	var checks []health.Config

	if cfg.Cart.Store == config.CartStorePostgres {
		checks = append(checks, health.Config{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		})
	}

	if cfg.RedisConnect.Enabled() {
		checks = append(checks, health.Config{
			Name:    "redis",
			Timeout: 2 * time.Second,
			// drafts fall back gracefully, carts in redis do not
			SkipOnErr: cfg.Cart.Store != config.CartStoreRedis,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    cfg.Otel.ServiceName,
			Version: version,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
