package main

import (
	"context"
	"fmt"

	"procurement/internal/config"
	"procurement/internal/repository"
	"procurement/internal/sequence"
	"procurement/internal/service"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// app holds the wired service layer (Repository -> Service)
type app struct {
	tokens   service.TokenService
	users    service.UserService
	requests service.RequestService
	orders   service.PurchaseOrderService
	audit    service.AuditService
	redis    *redis.Client
}

func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB, notifier service.Notifier) (*app, error) {
	counter, redisClient, err := newCounter(ctx, cfg, db)
	if err != nil {
		return nil, err
	}
	numbers := sequence.NewGenerator(counter)

	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	return &app{
		tokens:   tokens,
		users:    service.NewUserService(userRepo, tokens),
		requests: service.NewRequestService(requestRepo, numbers, txManager, notifier),
		orders:   service.NewPurchaseOrderService(poRepo, requestRepo, numbers, txManager, notifier),
		audit:    service.NewAuditService(auditRepo, log.StandardLogger()),
		redis:    redisClient,
	}, nil
}

// newCounter picks the sequence backend. The postgres counter runs inside
// the caller's transaction; the redis one is shared across instances.
func newCounter(ctx context.Context, cfg *config.Config, db *gorm.DB) (sequence.Counter, *redis.Client, error) {
	if cfg.SequenceBackend != config.SequenceBackendRedis {
		return repository.NewSequenceRepository(db), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("could not reach redis at %s: %w", cfg.RedisAddr, err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("using redis sequence counter")
	return sequence.NewRedisCounter(client), client, nil
}

func (a *app) Close() {
	a.audit.Wait()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis client")
		}
	}
}
