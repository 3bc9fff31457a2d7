package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caseflow-io/caseflow/pkg/schema"
)

func envelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "ops@example.com" {
			t.Fatalf("email = %q", body["email"])
		}
		envelope(w, http.StatusOK, map[string]any{
			"token": "tok-123",
			"user":  schema.User{ID: 7, Email: "ops@example.com", Role: "user"},
		})
	}))
	defer srv.Close()

	c := NewWithBaseURLs(srv.URL, srv.URL, srv.URL)
	user, err := c.Login(context.Background(), "ops@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("user id = %d, want 7", user.ID)
	}
	if c.token != "tok-123" {
		t.Fatalf("token = %q, want tok-123", c.token)
	}
}

func TestPersonCRUDSendsBearerToken(t *testing.T) {
	email := "ada@example.com"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Fatalf("Authorization = %q", got)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/people":
			envelope(w, http.StatusCreated, schema.Person{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: &email})
		case r.Method == http.MethodGet && r.URL.Path == "/api/people/1":
			envelope(w, http.StatusOK, schema.Person{ID: 1, FirstName: "Ada", LastName: "Lovelace"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/people/1":
			envelope(w, http.StatusOK, nil)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewWithBaseURLs(srv.URL, srv.URL, srv.URL)
	c.SetToken("tok-123")

	person, err := c.CreatePerson(context.Background(), map[string]any{
		"first_name": "Ada", "last_name": "Lovelace", "email": email,
	})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if person.Email == nil || *person.Email != email {
		t.Fatalf("email = %v", person.Email)
	}
	if _, err := c.GetPerson(context.Background(), 1); err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if err := c.DeletePerson(context.Background(), 1); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}
}

func TestListPeopleDecodesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "5" {
			t.Fatalf("query = %q", r.URL.RawQuery)
		}
		envelope(w, http.StatusOK, schema.Page[schema.Person]{
			Data:       []schema.Person{{ID: 6}, {ID: 7}},
			Pagination: schema.NewPagination(2, 5, 7),
		})
	}))
	defer srv.Close()

	c := NewWithBaseURLs(srv.URL, srv.URL, srv.URL)
	c.SetToken("tok")
	page, err := c.ListPeople(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("ListPeople: %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("len(data) = %d, want 2", len(page.Data))
	}
	if page.Pagination.TotalPages != 2 {
		t.Fatalf("totalPages = %d, want 2", page.Pagination.TotalPages)
	}
}

func TestSearchCasesBuildsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cases/search" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "fraud" || q.Get("status") != "open" || q.Get("priority") != "" {
			t.Fatalf("query = %q", r.URL.RawQuery)
		}
		envelope(w, http.StatusOK, []schema.Case{{ID: 3, Title: "Fraud report", Status: "open"}})
	}))
	defer srv.Close()

	c := NewWithBaseURLs(srv.URL, srv.URL, srv.URL)
	c.SetToken("tok")
	results, err := c.SearchCases(context.Background(), "fraud", "open", "")
	if err != nil {
		t.Fatalf("SearchCases: %v", err)
	}
	if len(results) != 1 || results[0].ID != 3 {
		t.Fatalf("results = %+v", results)
	}
}

func TestSearchCasesEscapesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "billing & refunds" {
			t.Fatalf("q = %q", got)
		}
		envelope(w, http.StatusOK, []schema.Case{})
	}))
	defer srv.Close()

	c := NewWithBaseURLs(srv.URL, srv.URL, srv.URL)
	c.SetToken("tok")
	if _, err := c.SearchCases(context.Background(), "billing & refunds", "", ""); err != nil {
		t.Fatalf("SearchCases: %v", err)
	}
}

func TestCaseUpdateDeleteList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/cases/4":
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["status"] != "closed" {
				t.Fatalf("status = %v", body["status"])
			}
			envelope(w, http.StatusOK, schema.Case{ID: 4, Status: "closed"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/cases/4":
			envelope(w, http.StatusOK, nil)
		case r.Method == http.MethodGet && r.URL.Path == "/api/cases":
			if r.URL.Query().Get("page") != "1" || r.URL.Query().Get("limit") != "20" {
				t.Fatalf("query = %q", r.URL.RawQuery)
			}
			envelope(w, http.StatusOK, schema.Page[schema.Case]{
				Data:       []schema.Case{{ID: 4}},
				Pagination: schema.NewPagination(1, 20, 1),
			})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewWithBaseURLs(srv.URL, srv.URL, srv.URL)
	c.SetToken("tok")

	record, err := c.UpdateCase(context.Background(), 4, map[string]any{"status": "closed"})
	if err != nil {
		t.Fatalf("UpdateCase: %v", err)
	}
	if record.Status != "closed" {
		t.Fatalf("status = %q", record.Status)
	}
	page, err := c.ListCases(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("ListCases: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != 4 {
		t.Fatalf("page = %+v", page)
	}
	if err := c.DeleteCase(context.Background(), 4); err != nil {
		t.Fatalf("DeleteCase: %v", err)
	}
}

func TestErrorEnvelopeSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Person not found"})
	}))
	defer srv.Close()

	c := NewWithBaseURLs(srv.URL, srv.URL, srv.URL)
	c.SetToken("tok")
	_, err := c.GetPerson(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "Person not found"; !strings.Contains(err.Error(), want) {
		t.Fatalf("err = %q, want it to contain %q", err, want)
	}
}
