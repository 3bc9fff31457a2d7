package people

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/caseflow-io/caseflow/internal/bus"
	"github.com/caseflow-io/caseflow/internal/cache"
	"github.com/caseflow-io/caseflow/internal/httpauth"
	"github.com/caseflow-io/caseflow/pkg/schema"
)

const testSecret = "test-secret"

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(newFakeStore(), cache.NewMemory(), bus.NewMemory(), zerolog.Nop())
	h := &Handler{Service: svc}

	r := gin.New()
	r.Use(httpauth.RequestID())
	h.Routes(r, testSecret)
	return r
}

func authedRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var buf *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewBuffer(raw)
	} else {
		buf = &bytes.Buffer{}
	}

	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	token, _ := httpauth.Sign(testSecret, 1, "tester@example.com", "user", time.Hour)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) schema.Response {
	t.Helper()
	var resp schema.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not a valid envelope: %v", err)
	}
	return resp
}

func TestCreatePerson(t *testing.T) {
	r := setupTestRouter()

	req := authedRequest(t, "POST", "/api/people", gin.H{"first_name": "A", "last_name": "B"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeEnvelope(t, w)
	if !resp.Success {
		t.Errorf("Expected success envelope, got %+v", resp)
	}
	person := resp.Data.(map[string]any)
	if person["id"].(float64) != 1 {
		t.Errorf("Expected id 1, got %v", person["id"])
	}
}

func TestCreatePersonValidation(t *testing.T) {
	r := setupTestRouter()

	// Missing last_name.
	req := authedRequest(t, "POST", "/api/people", gin.H{"first_name": "A"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Success || resp.Error != "Validation failed" {
		t.Errorf("Expected validation failure envelope, got %+v", resp)
	}

	// Malformed email.
	req = authedRequest(t, "POST", "/api/people", gin.H{"first_name": "A", "last_name": "B", "email": "nope"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad email, got %d", w.Code)
	}
}

func TestCreatePersonRequiresToken(t *testing.T) {
	r := setupTestRouter()

	body, _ := json.Marshal(gin.H{"first_name": "A", "last_name": "B"})
	req, _ := http.NewRequest("POST", "/api/people", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", w.Code)
	}
}

func TestGetPersonNotFound(t *testing.T) {
	r := setupTestRouter()

	req := authedRequest(t, "GET", "/api/people/999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Success {
		t.Errorf("Expected failure envelope, got %+v", resp)
	}
}

func TestGetPersonInvalidID(t *testing.T) {
	r := setupTestRouter()

	req := authedRequest(t, "GET", "/api/people/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for non-integer id, got %d", w.Code)
	}
}

func TestCRUDRoundTrip(t *testing.T) {
	r := setupTestRouter()

	// Create.
	req := authedRequest(t, "POST", "/api/people", gin.H{"first_name": "A", "last_name": "B"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}

	// Get returns the created fields.
	req = authedRequest(t, "GET", "/api/people/1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	person := decodeEnvelope(t, w).Data.(map[string]any)
	if person["first_name"] != "A" || person["last_name"] != "B" {
		t.Errorf("Round trip mangled fields: %v", person)
	}

	// Update email.
	req = authedRequest(t, "PUT", "/api/people/1", gin.H{"email": "a@b.com"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	person = decodeEnvelope(t, w).Data.(map[string]any)
	if person["email"] != "a@b.com" {
		t.Errorf("Expected updated email, got %v", person["email"])
	}

	// Immediate read reflects the update.
	req = authedRequest(t, "GET", "/api/people/1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	person = decodeEnvelope(t, w).Data.(map[string]any)
	if person["email"] != "a@b.com" {
		t.Errorf("Read after update returned stale email: %v", person["email"])
	}

	// Delete.
	req = authedRequest(t, "DELETE", "/api/people/1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}

	// Gone now.
	req = authedRequest(t, "GET", "/api/people/1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestListPagination(t *testing.T) {
	r := setupTestRouter()

	for _, name := range []string{"A", "B", "C"} {
		req := authedRequest(t, "POST", "/api/people", gin.H{"first_name": name, "last_name": "X"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
	}

	req := authedRequest(t, "GET", "/api/people?page=1&limit=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	payload := decodeEnvelope(t, w).Data.(map[string]any)
	data := payload["data"].([]any)
	if len(data) != 2 {
		t.Errorf("Expected 2 records on page 1, got %d", len(data))
	}
	pagination := payload["pagination"].(map[string]any)
	if pagination["total"].(float64) != 3 || pagination["totalPages"].(float64) != 2 {
		t.Errorf("Wrong pagination metadata: %v", pagination)
	}
	// Ordered by id descending, so the newest record comes first.
	if first := data[0].(map[string]any); first["first_name"] != "C" {
		t.Errorf("Expected newest record first, got %v", first["first_name"])
	}
}
