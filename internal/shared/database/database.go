package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propdesk/internal/shared/config"
	applog "propdesk/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectTimeout = 5 * time.Second

// DB bundles the booking store (PostgreSQL) and the cache (Redis)
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
}

// Connect opens both stores and migrates the schema. A store that was
// opened is closed again when a later step fails.
func Connect(ctx context.Context, cfg *config.Config) (*DB, error) {
	log := applog.GetDefault()

	pg, err := openPostgres(ctx, cfg.Database, gormLogger(log, cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	db := &DB{PostgreSQL: pg}

	if err := Migrate(pg); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db.Redis, err = openRedis(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	log.Info("stores connected",
		"postgres", cfg.Database.Host+":"+cfg.Database.Port+"/"+cfg.Database.Name,
		"redis", cfg.Redis.Addr,
	)
	return db, nil
}

// InitDB connects with the default startup timeout
func InitDB(cfg *config.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*connectTimeout)
	defer cancel()
	return Connect(ctx, cfg)
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, l logger.Interface) (*gorm.DB, error) {
	pg, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:      l,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		PrepareStmt: true,
		// foreign keys are added by MigrateConstraints
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	sqlDB, err := pg.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	idle, open, lifetime := poolSettings(cfg)
	sqlDB.SetMaxIdleConns(idle)
	sqlDB.SetMaxOpenConns(open)
	sqlDB.SetConnMaxLifetime(lifetime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pg, nil
}

// poolSettings fills in unset pool values
func poolSettings(cfg config.DatabaseConfig) (idle, open int, lifetime time.Duration) {
	idle, open, lifetime = cfg.MaxIdleConns, cfg.MaxOpenConns, cfg.ConnMaxLifetime
	if open <= 0 {
		open = 100
	}
	if idle <= 0 {
		idle = 10
	}
	if idle > open {
		idle = open
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return idle, open, lifetime
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(redisOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 2,
		DialTimeout:  connectTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// gormLogger routes SQL logging through the application logger. Queries
// are traced in development; elsewhere only slow queries and errors show up.
func gormLogger(l *applog.Logger, cfg *config.Config) logger.Interface {
	level := logger.Warn
	if cfg.IsDevelopment() {
		level = logger.Info
	}
	return logger.New(slogWriter{l}, logger.Config{
		SlowThreshold:             cfg.Database.SlowQuery,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// slogWriter adapts the application logger to gorm's Printf writer
type slogWriter struct {
	log *applog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.log.Info("gorm", "sql", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Close releases both stores
func (db *DB) Close() error {
	var errs []error
	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close postgres: %w", err))
			}
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// HealthCheck pings every open store and reports all failures together
func (db *DB) HealthCheck(ctx context.Context) error {
	var errs []error
	if db.PostgreSQL != nil {
		sqlDB, err := db.PostgreSQL.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (db *DB) GetRedisClient() *redis.Client {
	return db.Redis
}

func (db *DB) GetPostgreSQL() *gorm.DB {
	return db.PostgreSQL
}
