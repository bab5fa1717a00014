package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	cart "github.com/dmehra2102/figurine-storefront/internal/cart/domain"
	"github.com/dmehra2102/figurine-storefront/internal/order/domain"
	"github.com/dmehra2102/figurine-storefront/pkg/outbox"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) SaveWithOutbox(ctx context.Context, o domain.Order, rec outbox.Record) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, number, cart_id, customer_name, customer_email, customer_phone,
				address_line1, city, postal_code, zone, region, pickup,
				subtotal, shipping_fee, tax, total, currency,
				payment_intent_id, payment_status, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13::numeric,$14::numeric,$15::numeric,$16::numeric,$17,$18,$19,$20,$21,$22)`,
		o.ID, o.Number, o.CartID, o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.ShippingAddress.Line1, o.ShippingAddress.City, o.ShippingAddress.PostalCode, string(o.Zone), string(o.Region), o.Pickup,
		o.Subtotal.String(), o.ShippingFee.String(), o.Tax.String(), o.Total.String(), o.Currency,
		o.PaymentIntentID, string(o.PaymentStatus), string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, item := range o.Items {
		batch.Queue(`INSERT INTO order_items (order_id, position, item_id, kind, catalog_ref, title, description, unit_price, quantity, image_url)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8::numeric,$9,$10)`,
			o.ID, i, item.ItemID, string(item.Kind), item.CatalogRef, item.Title, item.Description, item.UnitPrice.String(), item.Quantity, item.ImageURL)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) AttachPayment(ctx context.Context, id, intentID string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE orders SET payment_intent_id=$2, updated_at=now() WHERE id=$1`, id, intentID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) MarkPaidWithOutbox(ctx context.Context, o domain.Order, rec outbox.Record) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// guarded on status so a racing confirm cannot emit OrderPaid twice
	ct, err := tx.Exec(ctx, `UPDATE orders SET status=$2, payment_status=$3, payment_intent_id=$4, updated_at=$5
			WHERE id=$1 AND status <> $2`,
		o.ID, string(o.Status), string(o.PaymentStatus), o.PaymentIntentID, o.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}
	if err = insertOutbox(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	var (
		o                              domain.Order
		zone, region, payStatus, state string
		subtotal, fee, tax, total      string
	)
	err := r.pool.QueryRow(ctx, `SELECT id, number, cart_id, customer_name, customer_email, customer_phone,
			address_line1, city, postal_code, zone, region, pickup,
			subtotal::text, shipping_fee::text, tax::text, total::text, currency,
			payment_intent_id, payment_status, status, created_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Number, &o.CartID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
			&o.ShippingAddress.Line1, &o.ShippingAddress.City, &o.ShippingAddress.PostalCode, &zone, &region, &o.Pickup,
			&subtotal, &fee, &tax, &total, &o.Currency,
			&o.PaymentIntentID, &payStatus, &state, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	o.Zone, o.Region = cart.Zone(zone), cart.Region(region)
	o.PaymentStatus, o.Status = domain.PaymentStatus(payStatus), domain.OrderStatus(state)
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return domain.Order{}, err
	}
	if o.ShippingFee, err = decimal.NewFromString(fee); err != nil {
		return domain.Order{}, err
	}
	if o.Tax, err = decimal.NewFromString(tax); err != nil {
		return domain.Order{}, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return domain.Order{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT item_id, kind, catalog_ref, title, description, unit_price::text, quantity, image_url
		FROM order_items WHERE order_id=$1 ORDER BY position`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			item        domain.OrderItem
			kind, price string
		)
		if err := rows.Scan(&item.ItemID, &kind, &item.CatalogRef, &item.Title, &item.Description, &price, &item.Quantity, &item.ImageURL); err != nil {
			return domain.Order{}, err
		}
		item.Kind = cart.Kind(kind)
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, rec outbox.Record) error {
	_, err := tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		rec.AggregateType, rec.AggregateID, rec.Type, rec.Payload, rec.Headers, rec.Traceparent)
	return err
}

// MaxDispatchAttempts bounds how often the relay retries one outbox row
// before leaving it failed for an operator.
const MaxDispatchAttempts = 5

type OutboxStore struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewOutboxStore(log *slog.Logger, pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{log: log, pool: pool}
}

func (s *OutboxStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]outbox.Event, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, type, payload, headers, traceparent, created_at
		FROM outbox
		WHERE status = 'pending'
			OR (status = 'in_progress' AND lease_until < now())
		ORDER BY id
		FOR UPDATE SKIP LOCKED
		LIMIT $1
	`, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []outbox.Event
	for rows.Next() {
		var event outbox.Event
		var headers map[string]string
		if err := rows.Scan(&event.ID, &event.AggregateType, &event.AggregateID, &event.Type, &event.Payload, &headers, &event.Traceparent, &event.CreatedAt); err != nil {
			return nil, err
		}
		event.Headers = headers
		events = append(events, event)
	}
	if len(events) == 0 {
		return nil, tx.Commit(ctx)
	}

	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}

	_, err = tx.Exec(ctx, ` UPDATE outbox SET status='in_progress', relay_id=$1, lease_until=now() + $2::interval WHERE id = ANY($3)`, relayID, lease.String(), ids)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, ids []int64) error {
	ct, err := s.pool.Exec(ctx, `UPDATE outbox SET status='sent' WHERE id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.New("no rows updated")
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox
		SET status = CASE WHEN retry_count + 1 >= $3 THEN 'failed' ELSE 'pending' END,
			last_error=$2, retry_count=retry_count+1, relay_id=NULL, lease_until=NULL
		WHERE id=$1`, id, errMsg, MaxDispatchAttempts)
	return err
}

func (s *OutboxStore) ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET lease_until=now() + $1::interval WHERE id = ANY($2) AND relay_id=$3`, lease.String(), ids, relayID)
	return err
}
