package relstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
)

// Backend names accepted by Open.
const (
	BackendStatic   = "static"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a store.
type Options struct {
	Backend     string
	RulesFile   string
	SQLitePath  string
	PostgresDSN string
	MaxConns    int

	// RedisAddr enables the read-through cache when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
}

type closers []io.Closer

func (c closers) Close() error {
	var first error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open builds the configured store. The returned closer releases every
// connection the store holds.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (relations.Store, io.Closer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store relations.Store
		cl    closers
	)
	switch opts.Backend {
	case "", BackendStatic:
		rules := DefaultRules()
		if opts.RulesFile != "" {
			var err error
			if rules, err = LoadRules(opts.RulesFile); err != nil {
				return nil, nil, err
			}
		}
		store = NewStaticStore(rules)
		logger.Info("using static relationship rules", zap.Int("rules", len(rules)))
	case BackendSQLite:
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		store, cl = s, append(cl, s)
		logger.Info("using SQLite relationship store", zap.String("path", opts.SQLitePath))
	case BackendPostgres:
		s, err := OpenPostgres(opts.PostgresDSN, opts.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		store, cl = s, append(cl, s)
		logger.Info("using PostgreSQL relationship store")
	default:
		return nil, nil, fmt.Errorf("unknown relationship store backend %q", opts.Backend)
	}

	if opts.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			cl.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = NewCachedStore(store, NewRedisKVStore(client), opts.CacheTTL, logger)
		cl = append(cl, client)
		logger.Info("relationship cache enabled", zap.String("addr", opts.RedisAddr), zap.Duration("ttl", opts.CacheTTL))
	}
	return store, cl, nil
}
