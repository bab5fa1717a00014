package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmehra2102/figurine-storefront/internal/cart/domain"
)

const KeyPrefix = "figurine-cart-storage"

// SnapshotStore keeps one JSON document per cart under
// figurine-cart-storage:<cartID>. The ttl is refreshed on every save.
type SnapshotStore struct {
	log *slog.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewSnapshotStore(log *slog.Logger, rdb goredis.UniversalClient, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{log: log, rdb: rdb, ttl: ttl}
}

func Key(cartID string) string {
	return KeyPrefix + ":" + cartID
}

func (s *SnapshotStore) Save(ctx context.Context, cartID string, snap domain.Snapshot) error {
	if snap.Items == nil {
		snap.Items = []domain.LineItem{}
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return s.rdb.Set(ctx, Key(cartID), raw, s.ttl).Err()
}

func (s *SnapshotStore) Load(ctx context.Context, cartID string) (domain.Snapshot, bool, error) {
	raw, err := s.rdb.Get(ctx, Key(cartID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// a corrupt slot is treated like an empty cart
		s.log.Warn("discarding unreadable cart snapshot", "cart_id", cartID, "err", err)
		return domain.Snapshot{}, false, nil
	}
	return snap, true, nil
}
