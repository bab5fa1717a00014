package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/figurine-storefront/internal/cart/domain"
)

const DefaultSessionCapacity = 10_000

// Summary is a consistent read of one cart: rows, shipping and every derived
// amount taken under the same lock.
type Summary struct {
	CartID      string                  `json:"cartId"`
	Items       []domain.LineItem       `json:"items"`
	Shipping    *domain.ShippingContext `json:"shipping,omitempty"`
	Subtotal    decimal.Decimal         `json:"subtotal"`
	ShippingFee decimal.Decimal         `json:"shippingFee"`
	TaxRate     decimal.Decimal         `json:"taxRate"`
	Tax         decimal.Decimal         `json:"tax"`
	Total       decimal.Decimal         `json:"total"`
	ItemCount   int                     `json:"itemCount"`
}

type CatalogEntry struct {
	Product   domain.Product
	Available bool
}

type CustomRequest struct {
	Title               string
	Description         string
	Price               decimal.Decimal
	ImageURL            string
	SessionID           string
	PhotoURLs           []string
	CustomerNotes       string
	RequirementsSummary string
}

type ShippingInquiry struct {
	ID           string
	CartID       string
	FullName     string
	Email        string
	Phone        string
	PostalCode   string
	CartSnapshot domain.Snapshot
	CreatedAt    time.Time
}

type InquiryRequest struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	PostalCode string
}

type session struct {
	mu     sync.Mutex
	ledger *domain.Ledger
}

type Service struct {
	log       *slog.Logger
	repo      SnapshotRepository
	writer    SnapshotWriter
	catalog   Catalog
	inquiries InquiryRepository
	localFee  decimal.Decimal

	mu       sync.Mutex
	sessions *lru.Cache
	// sessions evicted while a caller held them; the replacement seeds only
	// after that caller has enqueued its snapshot
	retired map[string]*session
}

type Option func(*Service)

func WithLocalFee(fee decimal.Decimal) Option {
	return func(s *Service) { s.localFee = fee }
}

func NewService(log *slog.Logger, repo SnapshotRepository, writer SnapshotWriter, catalog Catalog, inquiries InquiryRepository, capacity int, opts ...Option) (*Service, error) {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	s := &Service{
		log:       log,
		repo:      repo,
		writer:    writer,
		catalog:   catalog,
		inquiries: inquiries,
		localFee:  domain.DefaultLocalFee,
		retired:   make(map[string]*session),
	}
	cache, err := lru.NewWithEvict(capacity, s.evicted)
	if err != nil {
		return nil, err
	}
	s.sessions = cache
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) View(ctx context.Context, cartID string) (Summary, error) {
	return s.read(ctx, cartID)
}

func (s *Service) AddProduct(ctx context.Context, cartID, productID string, quantity int) (Summary, error) {
	if quantity < 1 {
		return Summary{}, ErrQuantityInvalid
	}
	entry, found, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return Summary{}, fmt.Errorf("catalog lookup %s: %w", productID, err)
	}
	if !found {
		return Summary{}, ErrProductNotFound
	}
	if !entry.Available {
		return Summary{}, ErrProductUnavailable
	}
	return s.AddItem(ctx, cartID, domain.NewStandardItem(entry.Product, quantity))
}

func (s *Service) AddCustom(ctx context.Context, cartID string, req CustomRequest) (Summary, error) {
	if req.Price.IsNegative() {
		return Summary{}, ErrPriceInvalid
	}
	item := domain.NewCustomItem(uuid.NewString(), req.Title, req.Description, req.Price, req.ImageURL, domain.CustomDetails{
		SessionID:           req.SessionID,
		PhotoURLs:           req.PhotoURLs,
		CustomerNotes:       req.CustomerNotes,
		RequirementsSummary: req.RequirementsSummary,
	})
	return s.AddItem(ctx, cartID, item)
}

func (s *Service) AddItem(ctx context.Context, cartID string, item domain.LineItem) (Summary, error) {
	if item.Quantity < 1 {
		return Summary{}, ErrQuantityInvalid
	}
	return s.mutate(ctx, cartID, true, func(l *domain.Ledger) { l.AddItem(item) })
}

func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (Summary, error) {
	return s.mutate(ctx, cartID, true, func(l *domain.Ledger) { l.RemoveItem(itemID) })
}

func (s *Service) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (Summary, error) {
	return s.mutate(ctx, cartID, true, func(l *domain.Ledger) { l.UpdateQuantity(itemID, quantity) })
}

func (s *Service) Clear(ctx context.Context, cartID string) (Summary, error) {
	return s.mutate(ctx, cartID, true, func(l *domain.Ledger) { l.Clear() })
}

func (s *Service) QuoteShipping(ctx context.Context, cartID, postalCode string) (Summary, error) {
	code := domain.NormalizePostalCode(postalCode)
	if code == "" {
		return Summary{}, ErrPostalCodeRequired
	}
	quote := domain.QuoteShipping(code, s.localFee)
	return s.mutate(ctx, cartID, false, func(l *domain.Ledger) { l.SetShippingContext(quote) })
}

func (s *Service) ChoosePickup(ctx context.Context, cartID string) (Summary, error) {
	return s.mutate(ctx, cartID, false, func(l *domain.Ledger) { l.ClearShippingContext() })
}

// SubmitShippingInquiry records a manual quote request for a postal code
// outside the local zone and leaves the cart with the zero-fee remote quote.
func (s *Service) SubmitShippingInquiry(ctx context.Context, cartID string, req InquiryRequest) (Summary, error) {
	code := domain.NormalizePostalCode(req.PostalCode)
	if code == "" {
		return Summary{}, ErrPostalCodeRequired
	}
	name := strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	if name == "" || strings.TrimSpace(req.Email) == "" {
		return Summary{}, ErrContactRequired
	}
	quote := domain.QuoteShipping(code, s.localFee)
	if quote.Zone != domain.ZoneRemote {
		return Summary{}, ErrNotRemoteZone
	}

	sess, err := s.lock(ctx, cartID)
	if err != nil {
		return Summary{}, err
	}
	defer s.release(cartID, sess)

	inq := ShippingInquiry{
		ID:           uuid.NewString(),
		CartID:       cartID,
		FullName:     name,
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		PostalCode:   code,
		CartSnapshot: sess.ledger.Snapshot(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.inquiries.SaveInquiry(ctx, inq); err != nil {
		return Summary{}, fmt.Errorf("save shipping inquiry: %w", err)
	}
	s.log.Info("shipping inquiry submitted", "cart_id", cartID, "inquiry_id", inq.ID, "postal_code", code)

	sess.ledger.SetShippingContext(quote)
	return summarize(cartID, sess.ledger), nil
}

// Forget drops the in-memory session; the next access re-seeds it from the
// stored snapshot without a shipping quote.
func (s *Service) Forget(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Remove(cartID)
}

func (s *Service) read(ctx context.Context, cartID string) (Summary, error) {
	sess, err := s.lock(ctx, cartID)
	if err != nil {
		return Summary{}, err
	}
	defer s.release(cartID, sess)
	return summarize(cartID, sess.ledger), nil
}

func (s *Service) mutate(ctx context.Context, cartID string, persist bool, fn func(*domain.Ledger)) (Summary, error) {
	sess, err := s.lock(ctx, cartID)
	if err != nil {
		return Summary{}, err
	}
	defer s.release(cartID, sess)

	fn(sess.ledger)
	if persist {
		s.writer.Enqueue(cartID, sess.ledger.Snapshot())
	}
	return summarize(cartID, sess.ledger), nil
}

// lock returns the cached session for cartID with its mutex held. Callers
// must hand it back through release.
func (s *Service) lock(ctx context.Context, cartID string) (*session, error) {
	sess, err := s.session(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.claim(ctx, cartID, sess)
}

// claim locks sess and checks it is still the cached session for cartID. A
// session evicted between lookup and lock is dropped for its replacement,
// otherwise the write would land on a ledger nobody reads again.
func (s *Service) claim(ctx context.Context, cartID string, sess *session) (*session, error) {
	for {
		sess.mu.Lock()
		if s.current(cartID, sess) {
			return sess, nil
		}
		s.release(cartID, sess)

		next, err := s.session(ctx, cartID)
		if err != nil {
			return nil, err
		}
		sess = next
	}
}

func (s *Service) release(cartID string, sess *session) {
	sess.mu.Unlock()

	s.mu.Lock()
	if s.retired[cartID] == sess {
		delete(s.retired, cartID)
	}
	s.mu.Unlock()
}

func (s *Service) current(cartID string, sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.sessions.Peek(cartID)
	return ok && v.(*session) == sess
}

// evicted runs inside the cache with s.mu held.
func (s *Service) evicted(key, value interface{}) {
	sess := value.(*session)
	if sess.mu.TryLock() {
		// idle: any later claim fails the current check
		sess.mu.Unlock()
		return
	}
	s.retired[key.(string)] = sess
}

func (s *Service) session(ctx context.Context, cartID string) (*session, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, ErrCartIDRequired
	}

	s.mu.Lock()
	if v, ok := s.sessions.Get(cartID); ok {
		s.mu.Unlock()
		return v.(*session), nil
	}
	prev := s.retired[cartID]
	delete(s.retired, cartID)
	sess := &session{}
	sess.mu.Lock()
	s.sessions.Add(cartID, sess)
	s.mu.Unlock()

	if prev != nil {
		// wait for the evicted holder to enqueue what it changed
		prev.mu.Lock()
		prev.mu.Unlock()
	}
	sess.ledger = domain.FromSnapshot(s.seed(ctx, cartID))
	sess.mu.Unlock()
	return sess, nil
}

func (s *Service) seed(ctx context.Context, cartID string) domain.Snapshot {
	if snap, ok := s.writer.Pending(cartID); ok {
		return snap
	}
	snap, found, err := s.repo.Load(ctx, cartID)
	if err != nil {
		s.log.Warn("cart snapshot load failed, starting empty", "cart_id", cartID, "err", err)
		return domain.Snapshot{}
	}
	if !found {
		return domain.Snapshot{}
	}
	return snap
}

func summarize(cartID string, l *domain.Ledger) Summary {
	sum := Summary{
		CartID:      cartID,
		Items:       l.Items(),
		Subtotal:    l.Subtotal(),
		ShippingFee: l.ShippingFee(),
		TaxRate:     l.TaxRate(),
		Tax:         l.Tax(),
		Total:       l.Total(),
		ItemCount:   l.ItemCount(),
	}
	if ctx, ok := l.ShippingContext(); ok {
		sum.Shipping = &ctx
	}
	return sum
}
