package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/figurine-storefront/internal/cart/application"
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
		tracer:  otel.Tracer("cart-http"),
	}
}

type addItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type addCustomReq struct {
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Price               decimal.Decimal `json:"price"`
	ImageURL            string          `json:"imageUrl"`
	SessionID           string          `json:"sessionId"`
	PhotoURLs           []string        `json:"photoUrls"`
	CustomerNotes       string          `json:"customerNotes"`
	RequirementsSummary string          `json:"requirementsSummary"`
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}

type shippingReq struct {
	PostalCode string `json:"postalCode"`
}

type inquiryReq struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postalCode"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/carts/{cartID}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Delete("/", h.clear)
		r.Post("/items", h.addItem)
		r.Post("/custom-items", h.addCustom)
		r.Patch("/items/{itemID}", h.updateQuantity)
		r.Delete("/items/{itemID}", h.removeItem)
		r.Post("/shipping", h.quoteShipping)
		r.Post("/pickup", h.choosePickup)
		r.Post("/shipping-inquiries", h.submitInquiry)
	})
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ViewCart")
	defer span.End()

	sum, err := h.service.View(ctx, chi.URLParam(r, "cartID"))
	h.respond(w, r, sum, err)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ClearCart")
	defer span.End()

	sum, err := h.service.Clear(ctx, chi.URLParam(r, "cartID"))
	h.respond(w, r, sum, err)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddItem")
	defer span.End()

	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	span.SetAttributes(attribute.String("product.id", req.ProductID))

	sum, err := h.service.AddProduct(ctx, chi.URLParam(r, "cartID"), req.ProductID, req.Quantity)
	h.respond(w, r, sum, err)
}

func (h *Handler) addCustom(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddCustomItem")
	defer span.End()

	var req addCustomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	sum, err := h.service.AddCustom(ctx, chi.URLParam(r, "cartID"), application.CustomRequest{
		Title:               req.Title,
		Description:         req.Description,
		Price:               req.Price,
		ImageURL:            req.ImageURL,
		SessionID:           req.SessionID,
		PhotoURLs:           req.PhotoURLs,
		CustomerNotes:       req.CustomerNotes,
		RequirementsSummary: req.RequirementsSummary,
	})
	h.respond(w, r, sum, err)
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateQuantity")
	defer span.End()

	var req quantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	sum, err := h.service.UpdateQuantity(ctx, chi.URLParam(r, "cartID"), chi.URLParam(r, "itemID"), req.Quantity)
	h.respond(w, r, sum, err)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveItem")
	defer span.End()

	sum, err := h.service.RemoveItem(ctx, chi.URLParam(r, "cartID"), chi.URLParam(r, "itemID"))
	h.respond(w, r, sum, err)
}

func (h *Handler) quoteShipping(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "QuoteShipping")
	defer span.End()

	var req shippingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	sum, err := h.service.QuoteShipping(ctx, chi.URLParam(r, "cartID"), req.PostalCode)
	h.respond(w, r, sum, err)
}

func (h *Handler) choosePickup(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ChoosePickup")
	defer span.End()

	sum, err := h.service.ChoosePickup(ctx, chi.URLParam(r, "cartID"))
	h.respond(w, r, sum, err)
}

func (h *Handler) submitInquiry(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitShippingInquiry")
	defer span.End()

	var req inquiryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	sum, err := h.service.SubmitShippingInquiry(ctx, chi.URLParam(r, "cartID"), application.InquiryRequest{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		PostalCode: req.PostalCode,
	})
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sum)
		return
	}
	h.respond(w, r, sum, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, sum application.Summary, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("cart request failed", "method", r.Method, "path", r.URL.Path, "err", err)
			http.Error(w, "internal error", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sum)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrProductUnavailable):
		return http.StatusConflict
	case errors.Is(err, application.ErrCartIDRequired),
		errors.Is(err, application.ErrQuantityInvalid),
		errors.Is(err, application.ErrPriceInvalid),
		errors.Is(err, application.ErrPostalCodeRequired),
		errors.Is(err, application.ErrNotRemoteZone),
		errors.Is(err, application.ErrContactRequired):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
