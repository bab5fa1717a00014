//go:build integration

package integration

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type Env struct {
	PG       *postgres.PostgresContainer
	Kafka    *kafka.KafkaContainer
	Redis    *tcredis.RedisContainer
	PGURL    string
	KAddr    []string
	RedisURL string
	Cancel   context.CancelFunc
}

func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	env := &Env{Cancel: cancel}

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	env.PG = pgC
	if env.PGURL, err = pgC.ConnectionString(ctx, "sslmode=disable"); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}

	kafkaC, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("storefront-test"),
	)
	if err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	env.Kafka = kafkaC
	if env.KAddr, err = kafkaC.Brokers(ctx); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}

	redisC, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	env.Redis = redisC
	if env.RedisURL, err = redisC.ConnectionString(ctx); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	return env, nil
}

func (e *Env) Teardown(ctx context.Context) {
	e.Cancel()
	if e.Redis != nil {
		_ = e.Redis.Terminate(ctx)
	}
	if e.Kafka != nil {
		_ = e.Kafka.Terminate(ctx)
	}
	if e.PG != nil {
		_ = e.PG.Terminate(ctx)
	}
}
