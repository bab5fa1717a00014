package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	cartapp "github.com/dmehra2102/figurine-storefront/internal/cart/application"
	"github.com/dmehra2102/figurine-storefront/internal/order/application"
	"github.com/dmehra2102/figurine-storefront/internal/order/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	CartID string `json:"cartId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Street string `json:"address"`
	City   string `json:"city"`
	Postal string `json:"postalCode"`
	Pickup bool   `json:"pickup"`
}

type itemView struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	AssetID  string          `json:"assetId,omitempty"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

type orderView struct {
	ID              string     `json:"id"`
	Number          string     `json:"orderNumber"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"paymentStatus"`
	Pickup          bool       `json:"pickup"`
	ShippingAddress string     `json:"shippingAddress,omitempty"`
	Items           []itemView `json:"items"`
	Subtotal        string     `json:"subtotal"`
	ShippingFee     string     `json:"shippingFee"`
	Tax             string     `json:"tax"`
	Total           string     `json:"total"`
	Currency        string     `json:"currency"`
	CreatedAt       time.Time  `json:"createdAt"`
	ClientSecret    string     `json:"clientSecret,omitempty"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/confirm", h.confirmPayment)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Checkout")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("cart.id", req.CartID))

	res, err := h.service.Checkout(ctx, application.CheckoutRequest{
		CartID:   req.CartID,
		Customer: domain.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone},
		Address:  domain.Address{Line1: req.Street, City: req.City, PostalCode: req.Postal},
		Pickup:   req.Pickup,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view := toView(res.Order)
	view.ClientSecret = res.ClientSecret
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(o))
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ConfirmPayment")
	defer span.End()

	o, err := h.service.ConfirmPayment(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(o))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var unavailable *application.UnavailableError
	if errors.As(err, &unavailable) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": application.ErrItemsUnavailable.Error(), "unavailable": unavailable.IDs})
		return
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("order request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrPaymentNotSucceeded):
		return http.StatusPaymentRequired
	case errors.Is(err, application.ErrManualQuotePending):
		return http.StatusConflict
	case errors.Is(err, application.ErrCartEmpty),
		errors.Is(err, application.ErrShippingRequired),
		errors.Is(err, application.ErrCustomerRequired),
		errors.Is(err, application.ErrAddressRequired),
		errors.Is(err, cartapp.ErrCartIDRequired):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func toView(o domain.Order) orderView {
	v := orderView{
		ID:            o.ID,
		Number:        o.Number,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Pickup:        o.Pickup,
		Items:         make([]itemView, 0, len(o.Items)),
		Subtotal:      o.Subtotal.StringFixed(2),
		ShippingFee:   o.ShippingFee.StringFixed(2),
		Tax:           o.Tax.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Currency:      o.Currency,
		CreatedAt:     o.CreatedAt,
	}
	if !o.Pickup {
		v.ShippingAddress = o.ShippingAddress.String()
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, itemView{
			ID:       it.ItemID,
			Type:     string(it.Kind),
			AssetID:  it.CatalogRef,
			Title:    it.Title,
			Price:    it.UnitPrice,
			Quantity: it.Quantity,
			ImageURL: it.ImageURL,
		})
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
