package integration

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// Env holds the throwaway postgres container shared by a test.
type Env struct {
	PG    *postgres.PostgresContainer
	Pool  *pgxpool.Pool
	PGURL string
}

func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("agrisales"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgC.Terminate(ctx)
		return nil, err
	}

	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		_ = pgC.Terminate(ctx)
		return nil, err
	}

	return &Env{PG: pgC, Pool: pool, PGURL: pgURL}, nil
}

func (e *Env) Teardown(ctx context.Context) {
	e.Pool.Close()
	_ = e.PG.Terminate(ctx)
}
