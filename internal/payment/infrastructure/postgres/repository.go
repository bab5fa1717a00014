package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/figurine-storefront/internal/payment/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Save(ctx context.Context, in domain.Intent) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO payments (intent_id, order_id, amount_minor, currency, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (intent_id) DO UPDATE SET status=$5, updated_at=$7`,
		in.ID, in.OrderID, in.AmountMinor, in.Currency, string(in.Status), in.CreatedAt, in.UpdatedAt)
	return err
}
