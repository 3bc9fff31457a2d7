package cases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog"

	"github.com/caseflow-io/caseflow/pkg/schema"
)

// IndexName is the Elasticsearch index holding case documents.
const IndexName = "cases"

// SearchFilters narrows a case search. Zero values mean "no filter".
type SearchFilters struct {
	Status     string
	Priority   string
	AssignedTo *int64
}

// SearchIndex is the full-text index the case service writes through to.
// All write operations are best-effort: the caller logs failures and moves
// on, because Postgres holds the authoritative rows.
type SearchIndex interface {
	IndexCase(ctx context.Context, c schema.Case) error
	UpdateCase(ctx context.Context, id int64, changes map[string]any) error
	DeleteCase(ctx context.Context, id int64) error
	Search(ctx context.Context, query string, filters SearchFilters) ([]schema.Case, error)
}

// ES implements SearchIndex over Elasticsearch.
type ES struct {
	client *elasticsearch.Client
	log    zerolog.Logger
}

// NewES connects to the node at addr and ensures the cases index exists with
// its mapping.
func NewES(ctx context.Context, addr string, log zerolog.Logger) (*ES, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{addr}})
	if err != nil {
		return nil, err
	}

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch ping: %w", err)
	}
	res.Body.Close()

	es := &ES{client: client, log: log}
	if err := es.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return es, nil
}

// Ping reports whether the Elasticsearch node is reachable.
func (e *ES) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

func (e *ES) ensureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{IndexName},
		e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"case_number": map[string]any{"type": "keyword"},
				"title":       map[string]any{"type": "text"},
				"description": map[string]any{"type": "text"},
				"status":      map[string]any{"type": "keyword"},
				"priority":    map[string]any{"type": "keyword"},
				"assigned_to": map[string]any{"type": "integer"},
				"person_id":   map[string]any{"type": "integer"},
				"created_by":  map[string]any{"type": "integer"},
				"created_at":  map[string]any{"type": "date"},
				"updated_at":  map[string]any{"type": "date"},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	res, err = e.client.Indices.Create(IndexName,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(bytes.NewReader(body)))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %s", res.String())
	}

	e.log.Info().Str("index", IndexName).Msg("Cases index created")
	return nil
}

func (e *ES) IndexCase(ctx context.Context, c schema.Case) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}

	res, err := e.client.Index(IndexName, bytes.NewReader(doc),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(strconv.FormatInt(c.ID, 10)),
		e.client.Index.WithRefresh("true"))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index case %d: %s", c.ID, res.String())
	}
	return nil
}

func (e *ES) UpdateCase(ctx context.Context, id int64, changes map[string]any) error {
	body, err := json.Marshal(map[string]any{"doc": changes})
	if err != nil {
		return err
	}

	res, err := e.client.Update(IndexName, strconv.FormatInt(id, 10), bytes.NewReader(body),
		e.client.Update.WithContext(ctx),
		e.client.Update.WithRefresh("true"))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("update case %d in index: %s", id, res.String())
	}
	return nil
}

func (e *ES) DeleteCase(ctx context.Context, id int64) error {
	res, err := e.client.Delete(IndexName, strconv.FormatInt(id, 10),
		e.client.Delete.WithContext(ctx),
		e.client.Delete.WithRefresh("true"))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete case %d from index: %s", id, res.String())
	}
	return nil
}

func (e *ES) Search(ctx context.Context, query string, filters SearchFilters) ([]schema.Case, error) {
	body, err := json.Marshal(BuildSearchQuery(query, filters))
	if err != nil {
		return nil, err
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(IndexName),
		e.client.Search.WithBody(bytes.NewReader(body)))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source schema.Case `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	results := make([]schema.Case, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, hit.Source)
	}
	return results, nil
}

// BuildSearchQuery assembles the Elasticsearch request body for a case
// search: a fuzzy multi_match over title, description and case number,
// plus exact-term filters. An empty query with no filters matches all.
// Results are ordered newest first.
func BuildSearchQuery(query string, filters SearchFilters) map[string]any {
	var must []any

	if query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "description", "case_number"},
				"fuzziness": "AUTO",
			},
		})
	}
	if filters.Status != "" {
		must = append(must, map[string]any{"term": map[string]any{"status": filters.Status}})
	}
	if filters.Priority != "" {
		must = append(must, map[string]any{"term": map[string]any{"priority": filters.Priority}})
	}
	if filters.AssignedTo != nil {
		must = append(must, map[string]any{"term": map[string]any{"assigned_to": *filters.AssignedTo}})
	}

	var q map[string]any
	if len(must) > 0 {
		q = map[string]any{"bool": map[string]any{"must": must}}
	} else {
		q = map[string]any{"match_all": map[string]any{}}
	}

	return map[string]any{
		"query": q,
		"sort":  []any{map[string]any{"created_at": "desc"}},
		"size":  100,
	}
}
