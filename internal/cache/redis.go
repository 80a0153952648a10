package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-sitting/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	clientName   = "quiz-sitting"
	pingTimeout  = 5 * time.Second
	dialTimeout  = 3 * time.Second
	queryTimeout = 2 * time.Second
)

// ErrNoRedisAddress is returned when no address is configured.
var ErrNoRedisAddress = errors.New("redis address is empty")

func options(redisCfg config.RedisConfig) (*redis.Options, error) {
	if redisCfg.Address == "" {
		return nil, ErrNoRedisAddress
	}
	return &redis.Options{
		Addr:         redisCfg.Address,
		Password:     redisCfg.Password,
		DB:           redisCfg.DB,
		ClientName:   clientName,
		DialTimeout:  dialTimeout,
		ReadTimeout:  queryTimeout,
		WriteTimeout: queryTimeout,
	}, nil
}

// NewRedisClient connects and pings the server. Callers own Close.
func NewRedisClient(redisCfg config.RedisConfig) (*redis.Client, error) {
	opt, err := options(redisCfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", redisCfg.Address, err)
	}
	return client, nil
}
