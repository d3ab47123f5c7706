package products

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
)

// CreateProductRequest is the POST /api/products body.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required,max=64"`
	Name         string          `json:"name" validate:"required,max=200"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CurrentStock int             `json:"currentStock" validate:"gte=0"`
	Description  string          `json:"description" validate:"omitempty,max=1000"`
}

// Handler serves the product REST endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the product handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	created, err := h.service.Create(r.Context(), Product{
		SKU:          req.SKU,
		Name:         req.Name,
		UnitPrice:    req.UnitPrice,
		CurrentStock: req.CurrentStock,
		Description:  req.Description,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.logger.Info("product created", slog.Int64("product_id", created.ID), slog.String("sku", created.SKU))
	httpx.JSON(w, http.StatusOK, created)
}
