package postgres

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/figurine-storefront/internal/cart/application"
)

// InquiryRepository files remote-zone delivery requests for a manual quote.
type InquiryRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewInquiryRepository(log *slog.Logger, pool *pgxpool.Pool) *InquiryRepository {
	return &InquiryRepository{log: log, pool: pool}
}

func (r *InquiryRepository) SaveInquiry(ctx context.Context, inq application.ShippingInquiry) error {
	snap, err := json.Marshal(inq.CartSnapshot)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO shipping_inquiries (id, cart_id, full_name, email, phone, postal_code, cart_snapshot, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'pending',$8)`,
		inq.ID, inq.CartID, inq.FullName, inq.Email, inq.Phone, inq.PostalCode, snap, inq.CreatedAt)
	if err != nil {
		return err
	}
	r.log.Info("shipping inquiry filed", "inquiry_id", inq.ID, "cart_id", inq.CartID, "postal_code", inq.PostalCode)
	return nil
}
