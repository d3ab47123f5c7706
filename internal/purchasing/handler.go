package purchasing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
)

// Ref is an {"id": n} reference in request bodies.
type Ref struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// CreateOrderRequest is the POST /api/orders body.
type CreateOrderRequest struct {
	Vendor Ref                 `json:"vendor"`
	Items  []CreateItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateItemRequest is one requested order line.
type CreateItemRequest struct {
	Product  Ref `json:"product"`
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ReceivePartialRequest is the POST /api/orders/{id}/receive-partial body.
type ReceivePartialRequest struct {
	ItemID   int64 `json:"itemId" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

// Handler serves the purchase order REST endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the purchase order handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers purchase order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.show)
		r.Post("/approve", h.approve)
		r.Post("/cancel", h.cancel)
		r.Post("/receive", h.receive)
		r.Post("/receive-partial", h.receivePartial)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	input := CreateInput{VendorID: req.Vendor.ID, Items: make([]ItemInput, 0, len(req.Items))}
	for _, item := range req.Items {
		input.Items = append(input.Items, ItemInput{ProductID: item.Product.ID, Quantity: item.Quantity})
	}
	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, created)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.service.Approve)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.service.Cancel)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.service.ReceiveAll)
}

func (h *Handler) receivePartial(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req ReceivePartialRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	order, err := h.service.ReceivePartial(r.Context(), id, req.ItemID, req.Quantity)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int64) (Order, error)) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	order, err := action(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
