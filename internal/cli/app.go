package cli

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/storefront/internal/cache"
	"github.com/iliyamo/storefront/internal/config"
	"github.com/iliyamo/storefront/internal/handler"
	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/payment"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/router"
	"github.com/iliyamo/storefront/internal/service"
)

// newServer assembles repositories, services and handlers on a fresh echo
// instance. rdb may be nil; the cache then reports itself unavailable and
// the auth rate limiter lets everything through.
func newServer(cfg config.Config, db *sql.DB, rdb *redis.Client, logger *log.Logger) *echo.Echo {
	store := cache.New(rdb, cfg.Cache.OpTimeout)

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	coupons := repository.NewCouponRepo(db)
	orders := repository.NewOrderRepo(db)

	tokens := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		CacheOptional: cfg.Cache.Optional,
	}, store, logger)
	auth := service.NewAuthService(users, tokens, cfg.BcryptCost, logger)
	catalog := service.NewCatalogService(products, store, cfg.Cache.Optional, logger)
	couponSvc := service.NewCouponService(coupons)
	checkout := service.NewCheckoutService(
		service.DefaultCheckoutConfig(cfg.ClientURL),
		payment.NewStripeGateway(cfg.StripeSecretKey),
		coupons, orders,
		service.NewOrderPublisher(cfg.RabbitMQURL),
		logger,
	)

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := log.JSON{
				"id":         v.RequestID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
				logger.Errorj(fields)
				return nil
			}
			logger.Infoj(fields)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("1M"))

	router.Register(e, router.Handlers{
		Auth: handler.NewAuthHandler(auth, handler.CookieConfig{
			Secure:     cfg.CookieSecure,
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		}),
		Products:      handler.NewProductHandler(catalog),
		Coupons:       handler.NewCouponHandler(couponSvc),
		Payments:      handler.NewPaymentHandler(checkout),
		Health:        handler.Health(db, handler.PingFunc(store.Ping)),
		Authenticator: auth,
		AuthLimiter:   middleware.NewTokenBucket(cfg.RateLimit, store.Client()),
	})
	return e
}

const shutdownTimeout = 15 * time.Second
