package payments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
)

// IdempotencyHeader carries the optional replay guard key.
const IdempotencyHeader = "Idempotency-Key"

// OrderRefRequest is the {"id": n} order reference.
type OrderRefRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// RecordPaymentRequest is the POST /api/payments body.
type RecordPaymentRequest struct {
	PurchaseOrder        OrderRefRequest `json:"purchaseOrder"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentMethod        Method          `json:"paymentMethod" validate:"required"`
	Status               Status          `json:"status"`
	TransactionReference string          `json:"transactionReference" validate:"max=100"`
	Notes                string          `json:"notes" validate:"max=1000"`
}

// Handler serves the payment REST endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the payment handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.record)
	r.Get("/{id}", h.show)
	r.Get("/order/{orderID}", h.listByOrder)
	r.Get("/order/{orderID}/summary", h.summary)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	payment, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) listByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := httpx.IDParam(r, "orderID")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	payments, err := h.service.ListByOrder(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	orderID, err := httpx.IDParam(r, "orderID")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	summary, err := h.service.Summary(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	created, err := h.service.Record(r.Context(), RecordInput{
		OrderID:              req.PurchaseOrder.ID,
		Amount:               req.Amount,
		Method:               req.PaymentMethod,
		Status:               req.Status,
		TransactionReference: req.TransactionReference,
		Notes:                req.Notes,
		IdempotencyKey:       r.Header.Get(IdempotencyHeader),
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, created)
}
