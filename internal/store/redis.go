package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key the redis store writes.
const KeyPrefix = "gridboard:board:"

// BoardKey returns the key a board is stored under.
func BoardKey(name string) string { return KeyPrefix + name }

// UpdatesChannel returns the pub/sub channel saves of name are announced on.
func UpdatesChannel(name string) string { return BoardKey(name) + ":updates" }

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Logger   *log.Logger
}

// RedisStore keeps boards as JSON in redis and announces every save on a
// pub/sub channel, so sessions on different hosts stay in step.
type RedisStore struct {
	client *redis.Client
	logger *log.Logger
	now    func() time.Time
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client, logger: logger.WithPrefix("store"), now: time.Now}, nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (Board, error) {
	if err := CheckName(name); err != nil {
		return Board{}, err
	}
	data, err := s.client.Get(ctx, BoardKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Board{}, ErrNotFound
	}
	if err != nil {
		return Board{}, fmt.Errorf("load board: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (Board, error) {
	var b Board
	if err := json.Unmarshal(data, &b); err != nil {
		return Board{}, fmt.Errorf("decode board: %w", err)
	}
	return b, nil
}

// Save stores the board and publishes it in one transaction.
func (s *RedisStore) Save(ctx context.Context, b Board) error {
	if err := CheckName(b.Name); err != nil {
		return err
	}
	b.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, BoardKey(b.Name), data, 0)
		p.Publish(ctx, UpdatesChannel(b.Name), data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

func (s *RedisStore) Watch(ctx context.Context, name string) (<-chan Board, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	sub := s.client.Subscribe(ctx, UpdatesChannel(name))
	// Wait for the subscription to be confirmed so no save is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", name, err)
	}

	out := make(chan Board, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				b, err := decode([]byte(m.Payload))
				if err != nil {
					s.logger.Warn("ignoring malformed update", "board", name, "err", err)
					continue
				}
				deliver(out, b)
			}
		}
	}()
	return out, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
