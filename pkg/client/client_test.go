package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/regressions/5" {
			t.Errorf("path = %s, want /api/v1/regressions/5", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"id":                   5,
				"test_run_id":          12,
				"test_name":            "checkout",
				"viewport":             "800x600",
				"percentage_different": 1.25,
				"is_significant":       true,
				"status":               "pending",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	reg, err := c.Regressions().Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if reg.ID != 5 || reg.TestName != "checkout" || !reg.IsSignificant {
		t.Errorf("Get() = %+v, want id=5 test=checkout significant", reg)
	}
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error": map[string]interface{}{
				"code":    "NOT_FOUND",
				"message": "Regression not found",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Regressions().Get(context.Background(), 999)
	if err == nil {
		t.Fatal("Get() expected error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if !apiErr.IsNotFound() {
		t.Errorf("IsNotFound() = false, status = %d", apiErr.StatusCode)
	}
	if apiErr.Code != "NOT_FOUND" {
		t.Errorf("Code = %q, want NOT_FOUND", apiErr.Code)
	}
}

func TestClientListQueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"data":        []interface{}{},
				"page":        1,
				"page_size":   20,
				"total_items": 0,
				"total_pages": 0,
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	status := "pending"
	significant := true
	page, err := c.Regressions().List(context.Background(), 42, &RegressionListOptions{
		ListOptions: ListOptions{Page: 2, PageSize: 50},
		Status:      &status,
		Significant: &significant,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Page != 1 {
		t.Errorf("Page = %d, want 1", page.Page)
	}

	want := "page=2&page_size=50&significant=true&status=pending&test_run_id=42"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestClientReviewSendsBody(t *testing.T) {
	var gotBody ReviewRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "review recorded"})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	err := c.Regressions().Approve(context.Background(), 5, "alice")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if gotBody.Status != "approved" || gotBody.ReviewedBy != "alice" {
		t.Errorf("body = %+v, want status=approved by=alice", gotBody)
	}
}
