package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cwrk-planet/call-service/internal/metrics"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr    string
	DB      int
	Channel string
}

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// New возвращает Nop, если redis не настроен.
func New(ctx context.Context, cfg Config) (Publisher, error) {
	if cfg.Addr == "" {
		slog.Info("redis not configured, lifecycle events disabled")
		return Nop{}, nil
	}
	return NewRedisPublisher(ctx, cfg)
}

// NewRedisPublisher подключается к redis и проверяет соединение.
func NewRedisPublisher(ctx context.Context, cfg Config) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	ch := cfg.Channel
	if ch == "" {
		ch = "call-events"
	}
	return &RedisPublisher{rdb: rdb, channel: ch}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	err = p.rdb.Publish(ctx, p.channel, raw).Err()

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.EventsPublished.WithLabelValues(string(e.Type), result).Inc()
	return err
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }
