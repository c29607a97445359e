package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/medspa-frontdesk/internal/config"
	"github.com/wolfman30/medspa-frontdesk/internal/export"
	"github.com/wolfman30/medspa-frontdesk/internal/store"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// Storage is the record store plus whatever must be closed on shutdown.
type Storage struct {
	Store *store.Store
	close []func()
}

// Close releases backend connections.
func (s *Storage) Close() {
	if s == nil {
		return
	}
	for i := len(s.close) - 1; i >= 0; i-- {
		s.close[i]()
	}
}

// BuildStore opens the backend named by STORE_BACKEND. awsCfg is only read for
// the dynamodb backend.
func BuildStore(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	storeLogger := logger.Component("store")

	switch cfg.StoreBackend {
	case appconfig.BackendMemory, "":
		logger.Warn("using in-memory store; records are lost on restart")
		return &Storage{Store: store.New(store.NewMemoryKV(), storeLogger)}, nil

	case appconfig.BackendRedis:
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, fmt.Errorf("bootstrap: redis unavailable at %s", cfg.RedisAddr)
		}
		return &Storage{
			Store: store.New(store.NewRedisKV(client, cfg.RedisKeyPrefix), storeLogger),
			close: []func(){func() { _ = client.Close() }},
		}, nil

	case appconfig.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		return &Storage{
			Store: store.New(store.NewPostgresKV(pool), storeLogger),
			close: []func(){pool.Close},
		}, nil

	case appconfig.BackendDynamoDB:
		client := dynamodb.NewFromConfig(awsCfg)
		return &Storage{Store: store.New(store.NewDynamoKV(client, cfg.DynamoDBTable), storeLogger)}, nil

	default:
		return nil, fmt.Errorf("bootstrap: unknown store backend %q", cfg.StoreBackend)
	}
}

// BuildArchiver returns an S3 export archiver, or nil when EXPORT_BUCKET is unset.
func BuildArchiver(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) *export.Archiver {
	if cfg == nil || strings.TrimSpace(cfg.ExportBucket) == "" {
		return nil
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// LocalStack serves buckets on the path, not a subdomain.
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	return export.NewArchiver(export.ArchiverConfig{
		S3:     client,
		Bucket: cfg.ExportBucket,
		Logger: logger,
	})
}
