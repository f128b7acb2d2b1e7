/*
Package backend performs the one-time capability check at startup and builds the message store,
the user directory and the blob store the rest of the server runs against.

The order of preference is Postgres, then Redis for messages, then process memory. A durable
backend that is configured but unreachable is logged as a ConfigError and replaced by the
transient one; it never stops the process.
*/
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"pairchat/internal/app/db"
	dbc "pairchat/internal/app/db/sqlc"
	"pairchat/internal/app/directory"
	"pairchat/internal/app/message"
	"pairchat/internal/app/storage"
	"pairchat/internal/configs"
	"pairchat/internal/pkg/logx"
)

const redisPingTimeout = 5 * time.Second

// ConfigError reports a durable backend that is unset or unreachable.
type ConfigError struct {
	Backend string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Backend, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Backends bundles the selected implementations.
type Backends struct {
	Messages  message.Store
	Directory directory.Directory
	Blobs     storage.BlobStore

	// Degraded lists durable backends that were configured but could not be used.
	Degraded []*ConfigError

	pool  *pgxpool.Pool
	redis *redis.Client
}

// Durable reports whether both messages and accounts survive a restart. With Redis alone the
// messages persist but user ids are reissued on restart, so stored history is unreachable.
func (b *Backends) Durable() bool {
	return b.Messages.Durable() && b.Directory.Durable()
}

// Open selects backends from cfg. Only a broken blob store configuration is returned as an error,
// since uploads have no transient substitute once S3 was explicitly requested.
func Open(ctx context.Context, cfg *configs.AppConfig) (*Backends, error) {
	blobs, err := storage.NewBlobStore(ctx, storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		LocalDir:          cfg.UploadDir,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize blob store: %w", err)
	}

	b := &Backends{Blobs: blobs}

	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err == nil {
			queries := dbc.New(pool)
			b.pool = pool
			b.Messages = message.NewPostgresStore(queries, blobs)
			b.Directory = directory.NewPostgres(queries)
			b.logSelection("postgres", "postgres")
			return b, nil
		}
		b.degrade(&ConfigError{Backend: "postgres", Err: err})
	}

	if cfg.RedisURL != "" {
		client, err := openRedis(ctx, cfg.RedisURL)
		if err == nil {
			b.redis = client
			b.Messages = message.NewRedisStore(client, blobs)
			b.Directory = directory.NewMemory()
			b.logSelection("redis", "memory")
			logx.Warn("Messages persist in redis but accounts are kept in memory; user ids change on restart")
			return b, nil
		}
		b.degrade(&ConfigError{Backend: "redis", Err: err})
	}

	b.Messages = message.NewMemoryStore()
	b.Directory = directory.NewMemory()
	b.logSelection("memory", "memory")

	return b, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func (b *Backends) degrade(err *ConfigError) {
	b.Degraded = append(b.Degraded, err)
	logx.Error(err, "Durable backend unavailable, falling back", "backend", err.Backend)
}

func (b *Backends) logSelection(messages, users string) {
	logx.Info("Backends selected",
		"messages", messages,
		"directory", users,
		"messages_durable", b.Messages.Durable(),
		"directory_durable", b.Directory.Durable(),
	)
}

// Close releases pooled connections.
func (b *Backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logx.Warn("Failed to close redis client", "error", err.Error())
		}
	}
}
