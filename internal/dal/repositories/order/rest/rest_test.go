package restrepo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trandev/salesdesk/internal/dal/rest"
	"github.com/trandev/salesdesk/internal/service/models/draft"
)

func sampleDraft(t *testing.T) *draft.OrderDraft {
	t.Helper()

	d := draft.New()
	d.Code = "ORD-12345678"
	d.Note = "deliver today"
	customerID := int64(7)
	d.CustomerID = &customerID

	id := d.Items[0].ID
	if err := d.SetVariant(id, 3, 1500); err != nil {
		t.Fatal(err)
	}
	d.ApplyAvailability(id, 3, 10)
	if err := d.SetQty(id, 2); err != nil {
		t.Fatal(err)
	}

	return d
}

func TestCreate_PayloadShape(t *testing.T) {
	var captured []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42}`))
	}))
	defer server.Close()

	repo := NewRestOrderRepository(rest.NewClient(server.URL, server.Client()))

	orderID, err := repo.Create(context.Background(), sampleDraft(t))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if orderID != 42 {
		t.Errorf("expected order id 42, got %d", orderID)
	}

	var payload struct {
		Code     string `json:"code"`
		Customer *int64 `json:"customer"`
		Status   string `json:"status"`
		Note     string `json:"note"`
		Items    []struct {
			ProductVariant int64 `json:"product_variant"`
			Qty            int   `json:"qty"`
		} `json:"items"`
	}
	if err := json.Unmarshal(captured, &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}

	if payload.Code != "ORD-12345678" || payload.Status != "pending" || payload.Note != "deliver today" {
		t.Errorf("unexpected order fields: %+v", payload)
	}
	if payload.Customer == nil || *payload.Customer != 7 {
		t.Errorf("expected customer 7, got %v", payload.Customer)
	}
	if len(payload.Items) != 1 || payload.Items[0].ProductVariant != 3 || payload.Items[0].Qty != 2 {
		t.Errorf("unexpected items: %+v", payload.Items)
	}

	// Client-side price and stock fields must never leave the process.
	if strings.Contains(string(captured), "unit_price") || strings.Contains(string(captured), "available_stock") {
		t.Errorf("payload leaks client-side fields: %s", captured)
	}
}

func TestCreate_WalkInCustomerSerializedAsNull(t *testing.T) {
	var captured []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"id": 1}`))
	}))
	defer server.Close()

	repo := NewRestOrderRepository(rest.NewClient(server.URL, server.Client()))

	d := sampleDraft(t)
	d.CustomerID = nil

	if _, err := repo.Create(context.Background(), d); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(string(captured), `"customer":null`) {
		t.Errorf("expected explicit null customer, got %s", captured)
	}
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "detail field",
			status: http.StatusBadRequest,
			body:   `{"detail": "insufficient stock for SKU-3"}`,
			want:   "insufficient stock for SKU-3",
		},
		{
			name:   "error field",
			status: http.StatusConflict,
			body:   `{"error": "duplicate order code"}`,
			want:   "duplicate order code",
		},
		{
			name:   "field-keyed list",
			status: http.StatusBadRequest,
			body:   `{"items": ["qty must be positive"], "note": ["too long"]}`,
			want:   "items: qty must be positive",
		},
		{
			name:   "field-keyed string",
			status: http.StatusBadRequest,
			body:   `{"code": "already exists"}`,
			want:   "code: already exists",
		},
		{
			name:   "unrecognized payload",
			status: http.StatusInternalServerError,
			body:   `{"nested": {"deep": true}}`,
			want:   "an error occurred while creating the order",
		},
		{
			name:   "non-JSON body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			want:   "an error occurred while creating the order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			repo := NewRestOrderRepository(rest.NewClient(server.URL, server.Client()))

			_, err := repo.Create(context.Background(), sampleDraft(t))
			var submitErr *SubmissionError
			if !errors.As(err, &submitErr) {
				t.Fatalf("expected SubmissionError, got %v", err)
			}
			if submitErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, submitErr.StatusCode)
			}
			if submitErr.Message != tt.want {
				t.Errorf("expected %q, got %q", tt.want, submitErr.Message)
			}
		})
	}
}
