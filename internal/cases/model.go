// Package cases implements the case service: case CRUD over Postgres, a
// full-text search index, and the consumer that reacts to person lifecycle
// events.
package cases

import (
	"fmt"
	"math/rand"
	"time"
)

// CreateCaseInput is the request body for creating a case.
type CreateCaseInput struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status" binding:"omitempty,oneof=open in_progress closed"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  *int64  `json:"assigned_to"`
	PersonID    *int64  `json:"person_id"`
}

// UpdateCaseInput is the request body for a partial case update.
type UpdateCaseInput struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=open in_progress closed"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  *int64  `json:"assigned_to"`
	PersonID    *int64  `json:"person_id"`
}

// Changes maps the supplied fields onto their column names, the only columns
// an UPDATE statement may touch.
func (in UpdateCaseInput) Changes() map[string]any {
	changes := make(map[string]any)
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.Priority != nil {
		changes["priority"] = *in.Priority
	}
	if in.AssignedTo != nil {
		changes["assigned_to"] = *in.AssignedTo
	}
	if in.PersonID != nil {
		changes["person_id"] = *in.PersonID
	}
	return changes
}

// NewCaseNumber generates a unique human-readable case number.
func NewCaseNumber() string {
	return fmt.Sprintf("CASE-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
}
