// Package schema defines the wire-level data structures shared by the Caseflow services.
package schema

import "time"

// User is the public shape of an account as returned by the auth service.
// The password hash never leaves the auth service's store.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Person is a person record as owned by the people service.
// Email, phone and address are optional and may be null on the wire.
type Person struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Case statuses and priorities accepted by the case service.
const (
	CaseStatusOpen       = "open"
	CaseStatusInProgress = "in_progress"
	CaseStatusClosed     = "closed"

	CasePriorityLow    = "low"
	CasePriorityMedium = "medium"
	CasePriorityHigh   = "high"
)

// Case is a case record. PersonID is an optional reference to a Person;
// the case service clears it when the referenced person is deleted.
type Case struct {
	ID          int64     `json:"id"`
	CaseNumber  string    `json:"case_number"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssignedTo  *int64    `json:"assigned_to"`
	PersonID    *int64    `json:"person_id"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidCaseStatus reports whether s is one of the accepted case statuses.
func ValidCaseStatus(s string) bool {
	return s == CaseStatusOpen || s == CaseStatusInProgress || s == CaseStatusClosed
}

// ValidCasePriority reports whether p is one of the accepted case priorities.
func ValidCasePriority(p string) bool {
	return p == CasePriorityLow || p == CasePriorityMedium || p == CasePriorityHigh
}
