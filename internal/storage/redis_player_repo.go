package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisPlayerRepo хранит снимки игроков в Redis с ограниченным временем жизни
type RedisPlayerRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "seafarer:player:",
		TTL:       24 * time.Hour,
	}
}

// NewRedisPlayerRepo подключается к Redis и проверяет соединение
func NewRedisPlayerRepo(ctx context.Context, config *RedisConfig) (*RedisPlayerRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("🔴 Connected to Redis at %s", config.Addr)
	return &RedisPlayerRepo{
		client:    client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

func (r *RedisPlayerRepo) key(addr string) string {
	return r.keyPrefix + addr
}

// Save сохраняет снимок игрока
func (r *RedisPlayerRepo) Save(ctx context.Context, snap PlayerSnapshot) error {
	if snap.Addr == "" {
		return ErrInvalidAddr
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key(snap.Addr), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load получает снимок игрока
func (r *RedisPlayerRepo) Load(ctx context.Context, addr string) (PlayerSnapshot, bool, error) {
	if addr == "" {
		return PlayerSnapshot{}, false, ErrInvalidAddr
	}

	data, err := r.client.Get(ctx, r.key(addr)).Bytes()
	if err == redis.Nil {
		return PlayerSnapshot{}, false, nil // Снимок не найден
	} else if err != nil {
		return PlayerSnapshot{}, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap PlayerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return PlayerSnapshot{}, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, true, nil
}

// Delete удаляет снимок игрока
func (r *RedisPlayerRepo) Delete(ctx context.Context, addr string) error {
	if addr == "" {
		return ErrInvalidAddr
	}
	if err := r.client.Del(ctx, r.key(addr)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// BatchSave записывает снимки одним пайплайном
func (r *RedisPlayerRepo) BatchSave(ctx context.Context, snaps []PlayerSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, snap := range snaps {
		if snap.Addr == "" {
			return fmt.Errorf("batch: %w", ErrInvalidAddr)
		}
		data, err := json.Marshal(snap)
		if err != nil {
			log.Printf("⚠️ Failed to marshal snapshot for %s: %v", snap.Addr, err)
			continue
		}
		pipe.Set(ctx, r.key(snap.Addr), data, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (r *RedisPlayerRepo) Close() error {
	return r.client.Close()
}
