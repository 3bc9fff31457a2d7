package schema

import (
	"fmt"
	"time"
)

// Cache TTLs for the people service's read-through entries.
const (
	PersonCacheTTL = time.Hour
	ListCacheTTL   = 5 * time.Minute
)

// PeopleListPrefix is the common prefix of every cached listing key.
// All keys under it are dropped together on any person mutation.
const PeopleListPrefix = "people:list:"

// PersonKey is the cache key for a single person record.
func PersonKey(id int64) string {
	return fmt.Sprintf("person:%d", id)
}

// PeopleListKey is the cache key for one page of the people listing.
func PeopleListKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", PeopleListPrefix, page, limit)
}
