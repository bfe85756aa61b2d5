package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hypernova-labs/dte-service/internal/config"
)

// claveToken es la clave bajo la que se comparte el token de Hacienda
// entre instancias del servicio
const claveToken = "hacienda:token"

// Redis representa la conexión a Redis
type Redis struct {
	client *redis.Client
}

// ConnectRedis establece la conexión a Redis
func ConnectRedis(cfg *config.Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error pinging redis: %w", err)
	}

	return &Redis{client: client}, nil
}

// Close cierra la conexión a Redis
func (r *Redis) Close() error {
	return r.client.Close()
}

// HealthCheck verifica la salud de Redis
func (r *Redis) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// CargarToken recupera el token de Hacienda compartido. La expiración se
// reconstruye a partir del TTL restante de la clave.
func (r *Redis) CargarToken(ctx context.Context) (string, time.Time, error) {
	token, err := r.client.Get(ctx, claveToken).Result()
	if err == redis.Nil {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error leyendo token de redis: %w", err)
	}

	ttl, err := r.client.TTL(ctx, claveToken).Result()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error leyendo ttl del token: %w", err)
	}
	if ttl <= 0 {
		return "", time.Time{}, nil
	}

	return token, time.Now().Add(ttl), nil
}

// GuardarToken publica el token de Hacienda para las demás instancias,
// con TTL igual a su vigencia restante
func (r *Redis) GuardarToken(ctx context.Context, token string, expira time.Time) error {
	ttl := time.Until(expira)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, claveToken, token, ttl).Err(); err != nil {
		return fmt.Errorf("error guardando token en redis: %w", err)
	}
	return nil
}
