package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/shared"
)

type memoryRepo struct {
	vendors []Vendor
}

func (m *memoryRepo) List(ctx context.Context) ([]Vendor, error) {
	return append([]Vendor(nil), m.vendors...), nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (Vendor, error) {
	for _, v := range m.vendors {
		if v.ID == id {
			return v, nil
		}
	}
	return Vendor{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func (m *memoryRepo) Create(ctx context.Context, vendor Vendor) (Vendor, error) {
	vendor.ID = int64(len(m.vendors) + 1)
	vendor.CreatedAt = time.Now()
	m.vendors = append(m.vendors, vendor)
	return vendor, nil
}

func TestCreateTrimsAndValidates(t *testing.T) {
	svc := NewService(&memoryRepo{})
	ctx := context.Background()

	created, err := svc.Create(ctx, Vendor{Name: "  Acme Supplies ", ContactNumber: " 555-0100 "})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.Equal(t, "Acme Supplies", created.Name)
	require.Equal(t, "555-0100", created.ContactNumber)

	_, err = svc.Create(ctx, Vendor{Name: "No Phone"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Vendor{ContactNumber: "1"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetUnknownVendor(t *testing.T) {
	svc := NewService(&memoryRepo{})
	_, err := svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func newTestRouter(repo Repository) http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo))
	r := chi.NewRouter()
	r.Route("/api/vendors", h.MountRoutes)
	return r
}

func TestHandlerCreateAndList(t *testing.T) {
	router := newTestRouter(&memoryRepo{})

	body := `{"name":"Acme","contactNumber":"555-0100","email":"sales@acme.test"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/vendors/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var created Vendor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Acme", created.Name)
	require.Equal(t, "sales@acme.test", created.Email)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vendors/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Vendor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
}

func TestHandlerRejectsInvalidEmail(t *testing.T) {
	router := newTestRouter(&memoryRepo{})
	body := `{"name":"Acme","contactNumber":"555","email":"not-an-email"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/vendors/", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Email")
}

func TestHandlerShowNotFound(t *testing.T) {
	router := newTestRouter(&memoryRepo{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vendors/9", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "vendor not found: id 9", rec.Body.String())
}
