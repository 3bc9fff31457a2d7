package people

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/caseflow-io/caseflow/internal/bus"
	"github.com/caseflow-io/caseflow/internal/cache"
	"github.com/caseflow-io/caseflow/pkg/schema"
)

// Service orchestrates the record store, the cache layer and the event bus.
//
// Reads go through the cache; a cache infrastructure error is logged and
// treated as a miss, never surfaced to the caller. Writes run in a fixed
// order: store mutation, then cache invalidation, then event publish. The
// two post-commit steps are best-effort; their failure is logged and the
// committed mutation is still reported as success.
type Service struct {
	store Store
	cache cache.Cache
	bus   bus.Publisher
	log   zerolog.Logger
}

// NewService wires a people service from its collaborators.
func NewService(store Store, c cache.Cache, publisher bus.Publisher, log zerolog.Logger) *Service {
	return &Service{store: store, cache: c, bus: publisher, log: log}
}

// Create inserts a person, drops the cached listings and publishes
// PersonCreated.
func (s *Service) Create(ctx context.Context, in CreatePersonInput, meta schema.EventMetadata) (schema.Person, error) {
	person, err := s.store.Insert(ctx, in, meta.UserID)
	if err != nil {
		return schema.Person{}, err
	}

	s.invalidate(ctx)
	s.publish(ctx, schema.TopicPeopleCreated, schema.EventPersonCreated, schema.PersonCreatedEvent{
		ID:        person.ID,
		FirstName: person.FirstName,
		LastName:  person.LastName,
		Email:     person.Email,
	}, meta)

	s.log.Info().Int64("personId", person.ID).Int64("userId", meta.UserID).Msg("Person created")
	return person, nil
}

// Get is the read-through lookup for a single person.
func (s *Service) Get(ctx context.Context, id int64) (schema.Person, error) {
	key := schema.PersonKey(id)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var person schema.Person
		if err := json.Unmarshal(cached, &person); err == nil {
			s.log.Debug().Int64("personId", id).Msg("Cache hit")
			return person, nil
		}
		s.log.Warn().Int64("personId", id).Msg("Discarding undecodable cache entry")
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed, falling back to store")
	}

	person, err := s.store.GetByID(ctx, id)
	if err != nil {
		return schema.Person{}, err
	}

	if buf, err := json.Marshal(person); err == nil {
		if err := s.cache.Set(ctx, key, buf, schema.PersonCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return person, nil
}

// List is the read-through paginated listing. On a miss the page slice and
// the total count are fetched concurrently and the assembled page is cached
// as one entry.
func (s *Service) List(ctx context.Context, page, limit int) (schema.Page[schema.Person], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	key := schema.PeopleListKey(page, limit)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var result schema.Page[schema.Person]
		if err := json.Unmarshal(cached, &result); err == nil {
			s.log.Debug().Int("page", page).Int("limit", limit).Msg("Cache hit for listing")
			return result, nil
		}
		s.log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed, falling back to store")
	}

	var (
		records []schema.Person
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.List(gctx, limit, (page-1)*limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return schema.Page[schema.Person]{}, err
	}

	result := schema.Page[schema.Person]{
		Data:       records,
		Pagination: schema.NewPagination(page, limit, total),
	}
	if buf, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, buf, schema.ListCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return result, nil
}

// Update applies a partial update, invalidates the person's cache entry and
// the listings, and publishes PersonUpdated carrying the change set.
func (s *Service) Update(ctx context.Context, id int64, in UpdatePersonInput, meta schema.EventMetadata) (schema.Person, error) {
	changes := in.Changes()
	person, err := s.store.Update(ctx, id, changes)
	if err != nil {
		return schema.Person{}, err
	}

	s.invalidate(ctx, schema.PersonKey(id))
	s.publish(ctx, schema.TopicPeopleUpdated, schema.EventPersonUpdated, schema.PersonUpdatedEvent{
		ID:      person.ID,
		Changes: changes,
	}, meta)

	s.log.Info().Int64("personId", id).Int64("userId", meta.UserID).Msg("Person updated")
	return person, nil
}

// Delete removes a person, invalidates the caches and publishes
// PersonDeleted. It returns the deleted id.
func (s *Service) Delete(ctx context.Context, id int64, meta schema.EventMetadata) (int64, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, schema.PersonKey(id))
	s.publish(ctx, schema.TopicPeopleDeleted, schema.EventPersonDeleted, schema.PersonDeletedEvent{ID: deleted}, meta)

	s.log.Info().Int64("personId", id).Int64("userId", meta.UserID).Msg("Person deleted")
	return deleted, nil
}

// invalidate drops the given exact keys plus every cached listing. It must
// have run, successfully or not, before any event for the mutation is
// published, so a consumer reacting to the event cannot read a stale entry
// this service left behind.
func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if len(keys) > 0 {
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.log.Error().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
		}
	}
	if err := s.cache.DeleteByPrefix(ctx, schema.PeopleListPrefix); err != nil {
		s.log.Error().Err(err).Msg("Listing cache invalidation failed")
	}
}

func (s *Service) publish(ctx context.Context, topic, eventType string, payload any, meta schema.EventMetadata) {
	event, err := schema.NewEvent(eventType, payload, &meta)
	if err != nil {
		s.log.Error().Err(err).Str("eventType", eventType).Msg("Failed to build event")
		return
	}
	if err := s.bus.Publish(ctx, topic, event); err != nil {
		s.log.Error().Err(err).Str("topic", topic).Msg("Failed to publish event")
	}
}
