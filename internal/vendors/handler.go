package vendors

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
)

// CreateVendorRequest is the POST /api/vendors body.
type CreateVendorRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactNumber string `json:"contactNumber" validate:"required,max=50"`
	Email         string `json:"email" validate:"omitempty,email,max=200"`
	Address       string `json:"address" validate:"omitempty,max=500"`
}

// Handler serves the vendor REST endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the vendor handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers vendor routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vendors)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	vendor, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vendor)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateVendorRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	created, err := h.service.Create(r.Context(), Vendor{
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.logger.Info("vendor created", slog.Int64("vendor_id", created.ID))
	httpx.JSON(w, http.StatusOK, created)
}
