package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/caseflow-io/caseflow/pkg/apperr"
	"github.com/caseflow-io/caseflow/pkg/schema"
)

const testSecret = "test-secret"

type fakeUserStore struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]Account
	getErr  error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]Account)}
}

func (f *fakeUserStore) Create(_ context.Context, email, passwordHash, fullName, role string) (schema.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[email]; ok {
		return schema.User{}, apperr.Conflict("email already registered")
	}
	f.nextID++
	a := Account{
		User: schema.User{
			ID:        f.nextID,
			Email:     email,
			FullName:  fullName,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: passwordHash,
	}
	f.byEmail[email] = a
	return a.User, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return Account{}, f.getErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return Account{}, apperr.NotFound("user")
	}
	return a, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (schema.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byEmail {
		if a.ID == id {
			return a.User, nil
		}
	}
	return schema.User{}, apperr.NotFound("user")
}

func setupAuthRouter() (*gin.Engine, *fakeUserStore) {
	gin.SetMode(gin.TestMode)
	store := newFakeUserStore()
	h := &Handler{Store: store, Secret: testSecret, TokenTTL: time.Hour, Log: zerolog.Nop()}

	r := gin.New()
	h.Routes(r)
	return r, store
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	r, _ := setupAuthRouter()

	w := postJSON(r, "/api/auth/register", gin.H{
		"email": "a@b.com", "password": "secret1", "full_name": "Ada",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp schema.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	user := resp.Data.(map[string]any)
	if user["email"] != "a@b.com" || user["role"] != "user" {
		t.Errorf("Unexpected registered user: %v", user)
	}
	if _, ok := user["password_hash"]; ok {
		t.Error("Password hash leaked into the response")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _ := setupAuthRouter()

	postJSON(r, "/api/auth/register", gin.H{"email": "a@b.com", "password": "secret1"})
	w := postJSON(r, "/api/auth/register", gin.H{"email": "a@b.com", "password": "secret2"})

	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate email, got %d", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	r, _ := setupAuthRouter()

	// Short password.
	if w := postJSON(r, "/api/auth/register", gin.H{"email": "a@b.com", "password": "four"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for short password, got %d", w.Code)
	}

	// Bad email.
	if w := postJSON(r, "/api/auth/register", gin.H{"email": "nope", "password": "secret1"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad email, got %d", w.Code)
	}
}

func TestLoginAndProfile(t *testing.T) {
	r, _ := setupAuthRouter()

	postJSON(r, "/api/auth/register", gin.H{"email": "a@b.com", "password": "secret1", "full_name": "Ada"})

	w := postJSON(r, "/api/auth/login", gin.H{"email": "a@b.com", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on login, got %d: %s", w.Code, w.Body.String())
	}

	var resp schema.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	payload := resp.Data.(map[string]any)
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("Expected a token in the login response")
	}

	req, _ := http.NewRequest("GET", "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on profile, got %d", rec.Code)
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	profile := resp.Data.(map[string]any)
	if profile["full_name"] != "Ada" {
		t.Errorf("Unexpected profile: %v", profile)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := setupAuthRouter()
	postJSON(r, "/api/auth/register", gin.H{"email": "a@b.com", "password": "secret1"})

	// Wrong password and unknown email produce the same response.
	w1 := postJSON(r, "/api/auth/login", gin.H{"email": "a@b.com", "password": "wrong12"})
	w2 := postJSON(r, "/api/auth/login", gin.H{"email": "ghost@b.com", "password": "secret1"})

	for i, w := range []*httptest.ResponseRecorder{w1, w2} {
		if w.Code != http.StatusUnauthorized {
			t.Errorf("case %d: expected 401, got %d", i, w.Code)
		}
	}
	if w1.Body.String() != w2.Body.String() {
		t.Error("Login failures must be indistinguishable")
	}
}

func TestLoginStoreOutageIsNotACredentialFailure(t *testing.T) {
	r, store := setupAuthRouter()
	store.getErr = errors.New("connection refused")

	w := postJSON(r, "/api/auth/login", gin.H{"email": "a@b.com", "password": "secret1"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500 on store outage, got %d: %s", w.Code, w.Body.String())
	}
	var resp schema.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error == "Invalid credentials" {
		t.Error("Store outage must not masquerade as bad credentials")
	}
}

func TestProfileRequiresToken(t *testing.T) {
	r, _ := setupAuthRouter()

	req, _ := http.NewRequest("GET", "/api/auth/profile", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret1" {
		t.Error("Password stored in plaintext")
	}
	if !CheckPassword("secret1", hash) {
		t.Error("Correct password rejected")
	}
	if CheckPassword("secret2", hash) {
		t.Error("Wrong password accepted")
	}
}
