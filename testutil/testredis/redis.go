package testredis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedis is a throwaway redis container with a connected client
type TestRedis struct {
	Container testcontainers.Container
	Client    *redis.Client
	URL       string
}

// New starts a redis container
func New(ctx context.Context) (*TestRedis, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	url := fmt.Sprintf("redis://%s:%s/0", host, port.Port())
	opts, err := redis.ParseURL(url)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &TestRedis{Container: container, Client: client, URL: url}, nil
}

// Reset flushes the database between tests
func (r *TestRedis) Reset(ctx context.Context) error {
	return r.Client.FlushDB(ctx).Err()
}

// Close closes the client and terminates the container
func (r *TestRedis) Close(ctx context.Context) {
	if r.Client != nil {
		r.Client.Close()
	}
	if r.Container != nil {
		r.Container.Terminate(ctx)
	}
}
