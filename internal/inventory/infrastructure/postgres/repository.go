package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/figurine-storefront/internal/inventory/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{
		log:  log,
		pool: pool,
	}
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Product, bool, error) {
	var (
		p     domain.Product
		price string
	)
	err := r.pool.QueryRow(ctx, `SELECT id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(category, ''),
			COALESCE(price, 0)::text, asset_url, asset_status, updated_at
		FROM assets WHERE id=$1`, id).
		Scan(&p.ID, &p.Title, &p.Description, &p.Category, &price, &p.ImageURL, &p.Status, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, err
	}
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, false, err
	}
	return p, true, nil
}

func (r *Repository) Unavailable(ctx context.Context, ids []string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT wanted.id
		FROM unnest($1::text[]) AS wanted(id)
		LEFT JOIN assets a ON a.id = wanted.id
		WHERE a.id IS NULL OR a.asset_status <> $2
		ORDER BY wanted.id`, ids, domain.StatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// MarkSold flips available pieces to sold and records which order took them.
// Replaying the same order is a no-op.
func (r *Repository) MarkSold(ctx context.Context, orderID string, ids []string) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	now := time.Now().UTC()
	ct, err := tx.Exec(ctx, `UPDATE assets SET asset_status=$1, updated_at=$2 WHERE id = ANY($3) AND asset_status=$4`,
		domain.StatusSold, now, ids, domain.StatusAvailable)
	if err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(`INSERT INTO asset_sales (order_id, asset_id, sold_at) VALUES ($1,$2,$3)
			ON CONFLICT (order_id, asset_id) DO NOTHING`, orderID, id, now)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	r.log.Info("products marked sold", "order_id", orderID, "updated", ct.RowsAffected())
	return int(ct.RowsAffected()), nil
}
