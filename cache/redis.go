// cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	Client *redis.Client
	ctx    = context.Background()

	// ErrDisabled — Redis не инициализирован; кэш тогда просто не работает,
	// вызывающие обязаны это переживать.
	ErrDisabled = errors.New("cache disabled")
)

func InitRedis(logger *zap.Logger) error {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}

	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)

	Client = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := Client.Ping(ctx).Err(); err != nil {
		logger.Error("redis_connection_failed",
			zap.Error(err),
			zap.String("addr", addr),
		)
		Client = nil
		return err
	}

	logger.Info("redis_connected",
		zap.String("addr", addr),
	)

	return nil
}

func Set(key string, value interface{}, expiration time.Duration) error {
	if Client == nil {
		return ErrDisabled
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return Client.Set(ctx, key, data, expiration).Err()
}

// Get читает значение из Redis и десериализует в dest
func Get(key string, dest interface{}) error {
	if Client == nil {
		return ErrDisabled
	}

	val, err := Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return fmt.Errorf("cache miss: %w", err)
	} else if err != nil {
		return fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return nil
}

// Delete удаляет ключ
func Delete(key string) error {
	if Client == nil {
		return ErrDisabled
	}
	return Client.Del(ctx, key).Err()
}

// IncrementCounter увеличивает счётчик и устанавливает TTL при первом инкременте
func IncrementCounter(key string, expiration time.Duration) (int64, error) {
	if Client == nil {
		return 0, ErrDisabled
	}

	val, err := Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	// TTL только при первом увеличении (когда val становится 1)
	if val == 1 {
		if err := Client.Expire(ctx, key, expiration).Err(); err != nil {
			return val, err
		}
	}

	return val, nil
}

// Состояние диалога бота ("ждём название привычки" и т.п.) живёт здесь,
// ключом по telegram_id с TTL — а не в глобальных множествах в памяти
// процесса. Рестарт или второй инстанс его не теряют.

func stateKey(telegramID int64) string {
	return fmt.Sprintf("bot_state:%d", telegramID)
}

func SetUserState(telegramID int64, state string, ttl time.Duration) error {
	if Client == nil {
		return ErrDisabled
	}
	return Client.Set(ctx, stateKey(telegramID), state, ttl).Err()
}

// GetUserState возвращает "" если состояния нет.
func GetUserState(telegramID int64) (string, error) {
	if Client == nil {
		return "", ErrDisabled
	}

	val, err := Client.Get(ctx, stateKey(telegramID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func ClearUserState(telegramID int64) error {
	if Client == nil {
		return ErrDisabled
	}
	return Client.Del(ctx, stateKey(telegramID)).Err()
}

// Close закрывает соединение с Redis
func Close() error {
	if Client != nil {
		return Client.Close()
	}
	return nil
}
