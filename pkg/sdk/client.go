// Package sdk provides the client-side library for the Caseflow services.
// It speaks the services' REST/JSON surface and handles auth token plumbing.
package sdk

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/caseflow-io/caseflow/pkg/schema"
)

// Client talks to the three Caseflow services. It is safe for concurrent
// use once authenticated.
type Client struct {
	httpc     *http.Client
	authURL   string
	peopleURL string
	caseURL   string
	token     string
}

// New builds a client from the CASEFLOW_AUTH_URL, CASEFLOW_PEOPLE_URL and
// CASEFLOW_CASE_URL environment variables, defaulting to the services'
// localhost ports. With CASEFLOW_TLS_INSECURE=true the client accepts the
// self-signed certificates the daemons generate for internal traffic.
func New() *Client {
	transport := http.DefaultTransport
	if os.Getenv("CASEFLOW_TLS_INSECURE") == "true" {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		httpc:     &http.Client{Timeout: 30 * time.Second, Transport: transport},
		authURL:   envOr("CASEFLOW_AUTH_URL", "http://localhost:3001"),
		peopleURL: envOr("CASEFLOW_PEOPLE_URL", "http://localhost:3002"),
		caseURL:   envOr("CASEFLOW_CASE_URL", "http://localhost:3003"),
	}
}

// NewWithBaseURLs builds a client against explicit service addresses.
func NewWithBaseURLs(authURL, peopleURL, caseURL string) *Client {
	c := New()
	c.authURL = authURL
	c.peopleURL = peopleURL
	c.caseURL = caseURL
	return c
}

// SetToken installs a previously obtained access token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates an account on the auth service.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (schema.User, error) {
	var user schema.User
	err := c.do(ctx, http.MethodPost, c.authURL+"/api/auth/register",
		map[string]string{"email": email, "password": password, "full_name": fullName}, &user)
	return user, err
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (schema.User, error) {
	var payload struct {
		Token string      `json:"token"`
		User  schema.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, c.authURL+"/api/auth/login",
		map[string]string{"email": email, "password": password}, &payload)
	if err != nil {
		return schema.User{}, err
	}
	c.token = payload.Token
	return payload.User, nil
}

// CreatePerson creates a person record.
func (c *Client) CreatePerson(ctx context.Context, fields map[string]any) (schema.Person, error) {
	var person schema.Person
	err := c.do(ctx, http.MethodPost, c.peopleURL+"/api/people", fields, &person)
	return person, err
}

// GetPerson fetches one person by id.
func (c *Client) GetPerson(ctx context.Context, id int64) (schema.Person, error) {
	var person schema.Person
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/api/people/%d", c.peopleURL, id), nil, &person)
	return person, err
}

// ListPeople fetches one page of the people listing.
func (c *Client) ListPeople(ctx context.Context, page, limit int) (schema.Page[schema.Person], error) {
	var result schema.Page[schema.Person]
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/people?page=%d&limit=%d", c.peopleURL, page, limit), nil, &result)
	return result, err
}

// UpdatePerson applies a partial update to a person.
func (c *Client) UpdatePerson(ctx context.Context, id int64, fields map[string]any) (schema.Person, error) {
	var person schema.Person
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s/api/people/%d", c.peopleURL, id), fields, &person)
	return person, err
}

// DeletePerson deletes a person by id.
func (c *Client) DeletePerson(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/api/people/%d", c.peopleURL, id), nil, nil)
}

// CreateCase creates a case record.
func (c *Client) CreateCase(ctx context.Context, fields map[string]any) (schema.Case, error) {
	var record schema.Case
	err := c.do(ctx, http.MethodPost, c.caseURL+"/api/cases", fields, &record)
	return record, err
}

// GetCase fetches one case by id.
func (c *Client) GetCase(ctx context.Context, id int64) (schema.Case, error) {
	var record schema.Case
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/api/cases/%d", c.caseURL, id), nil, &record)
	return record, err
}

// ListCases fetches one page of the case listing.
func (c *Client) ListCases(ctx context.Context, page, limit int) (schema.Page[schema.Case], error) {
	var result schema.Page[schema.Case]
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/cases?page=%d&limit=%d", c.caseURL, page, limit), nil, &result)
	return result, err
}

// UpdateCase applies a partial update to a case.
func (c *Client) UpdateCase(ctx context.Context, id int64, fields map[string]any) (schema.Case, error) {
	var record schema.Case
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s/api/cases/%d", c.caseURL, id), fields, &record)
	return record, err
}

// DeleteCase deletes a case by id.
func (c *Client) DeleteCase(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/api/cases/%d", c.caseURL, id), nil, nil)
}

// SearchCases runs a full-text case search with optional status/priority
// filters (empty strings mean no filter).
func (c *Client) SearchCases(ctx context.Context, query, status, priority string) ([]schema.Case, error) {
	params := url.Values{}
	params.Set("q", query)
	if status != "" {
		params.Set("status", status)
	}
	if priority != "" {
		params.Set("priority", priority)
	}
	var results []schema.Case
	err := c.do(ctx, http.MethodGet, c.caseURL+"/api/cases/search?"+params.Encode(), nil, &results)
	return results, err
}

// do performs one request and unwraps the response envelope into out.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s %s: status %d: %w", method, url, res.StatusCode, err)
	}
	if !envelope.Success {
		return fmt.Errorf("%s %s: %s", method, url, envelope.Error)
	}
	if out != nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
