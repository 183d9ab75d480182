package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/goliatone/go-resource/pkg/resource"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, WithToken("secret"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestCreateUnwrapsEnvelope(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotRequestID string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data": {"id": 7, "name": "Quiz A"}, "status": "created"}`))
	})

	payload, err := client.Create(context.Background(), "/quiz", map[string]any{"name": "Quiz A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/quiz" {
		t.Fatalf("request: %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header: %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatal("request id header missing")
	}
	if diff := cmp.Diff(map[string]any{"name": "Quiz A"}, gotBody); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"id": float64(7), "name": "Quiz A"}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchAcceptsRawObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quiz/7" {
			t.Errorf("path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id": 7, "name": "Quiz A"}`))
	})

	payload, err := client.Fetch(context.Background(), "/quiz", "7")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if payload["name"] != "Quiz A" {
		t.Fatalf("payload: %v", payload)
	}
}

func TestUpdateScopesToIdentifier(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/quiz/7" {
			t.Errorf("request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status": "updated"}`))
	})

	if _, err := client.Update(context.Background(), "/quiz", "7", map[string]any{"name": "Quiz B"}); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestDelete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/quiz/7" {
			t.Errorf("request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status": "deleted"}`))
	})
	if err := client.Delete(context.Background(), "/quiz", "7"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestListWithFilters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("category_id"); got != "12" {
			t.Errorf("filter: %q", got)
		}
		_, _ = w.Write([]byte(`{"data": [{"id": 1}, {"id": 2}], "status": "ok"}`))
	})

	items, err := client.List(context.Background(), "/shop/product", map[string]string{"category_id": "12"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items: %d", len(items))
	}
}

func TestValidationFailureDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors": {"name": ["required"], "non_field_errors": ["slug taken"]}}`))
	})

	_, err := client.Create(context.Background(), "/quiz", map[string]any{"name": ""})
	verr, ok := resource.AsValidation(err)
	if !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"name": {"required"}}, verr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"slug taken"}, verr.Form); diff != "" {
		t.Fatalf("form messages mismatch (-want +got):\n%s", diff)
	}
}

func TestOpaqueFailureBecomesCommunicationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"status": "upstream down"}`))
	})

	_, err := client.Fetch(context.Background(), "/quiz", "7")
	cerr, ok := resource.AsCommunication(err)
	if !ok {
		t.Fatalf("want CommunicationError, got %v", err)
	}
	if cerr.StatusCode != http.StatusBadGateway {
		t.Fatalf("status: %d", cerr.StatusCode)
	}
}

func TestBadRequestWithoutFieldPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status": "missing json"}`))
	})

	_, err := client.Create(context.Background(), "/quiz", map[string]any{"name": "x"})
	if _, ok := resource.AsValidation(err); ok {
		t.Fatalf("status-only body must not decode as validation: %v", err)
	}
	if _, ok := resource.AsCommunication(err); !ok {
		t.Fatalf("want CommunicationError, got %v", err)
	}
}

func TestNewRejectsEmptyBaseURL(t *testing.T) {
	if _, err := New("   "); err == nil {
		t.Fatal("empty base url must be rejected")
	}
}
