package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-api/config"
	"github.com/oksasatya/user-api/internal/domain/repository"
	"github.com/oksasatya/user-api/internal/infrastructure/memory"
	"github.com/oksasatya/user-api/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/user-api/internal/infrastructure/postgres"
)

// app-level container to share constructed components across packages
// Router wires modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	busChannel  messaging.Channel
	userRepo    repository.UserRepository
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}
func SetPGPool(p *pgxpool.Pool)                     { pgPool = p }
func GetPGPool() *pgxpool.Pool                      { return pgPool }
func SetRedis(r *redis.Client)                      { redisClient = r }
func GetRedis() *redis.Client                       { return redisClient }
func SetBusChannel(ch messaging.Channel)            { busChannel = ch }
func SetUserRepository(r repository.UserRepository) { userRepo = r }

// GetBusChannel falls back to the log-only channel when no bus was configured.
func GetBusChannel() messaging.Channel {
	if busChannel != nil {
		return busChannel
	}
	return messaging.LogChannel{Logger: GetLogger()}
}

// GetUserRepository returns the configured repository: postgres when a pool
// is set, otherwise a process-local in-memory store.
func GetUserRepository() repository.UserRepository {
	if userRepo != nil {
		return userRepo
	}
	if pool := GetPGPool(); pool != nil {
		userRepo = pginfra.NewUserRepository(pool)
	} else {
		userRepo = memory.NewUserRepository()
	}
	return userRepo
}
