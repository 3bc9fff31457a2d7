package schema

import (
	"testing"
	"time"
)

func TestPersonKey(t *testing.T) {
	if got := PersonKey(123); got != "person:123" {
		t.Errorf("Expected person:123, got %s", got)
	}
}

func TestPeopleListKey(t *testing.T) {
	if got := PeopleListKey(1, 10); got != "people:list:1:10" {
		t.Errorf("Expected people:list:1:10, got %s", got)
	}
	if got := PeopleListKey(7, 25); got != "people:list:7:25" {
		t.Errorf("Expected people:list:7:25, got %s", got)
	}
}

func TestCacheTTLs(t *testing.T) {
	if PersonCacheTTL != time.Hour {
		t.Errorf("Expected person TTL of 1h, got %v", PersonCacheTTL)
	}
	if ListCacheTTL != 5*time.Minute {
		t.Errorf("Expected list TTL of 5m, got %v", ListCacheTTL)
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 45)
	if p.TotalPages != 5 {
		t.Errorf("Expected 5 pages for 45 rows at limit 10, got %d", p.TotalPages)
	}

	p = NewPagination(1, 10, 0)
	if p.TotalPages != 0 {
		t.Errorf("Expected 0 pages for empty table, got %d", p.TotalPages)
	}

	p = NewPagination(1, 10, 10)
	if p.TotalPages != 1 {
		t.Errorf("Expected exactly 1 page for 10 rows at limit 10, got %d", p.TotalPages)
	}
}
