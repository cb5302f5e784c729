// Package service holds the business-rule layer of the procurement service.
//
// A Service wraps one repository.Store. It turns an absent record into
// domain.NotFoundError, sends only the fields a caller explicitly set, and
// guarantees every error it returns carries a domain kind. Supplier and
// purchase services compose a Service and add uniqueness pre-checks and
// entity-specific lookups.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/observability"
	"github.com/helixir/procurement-service/internal/repository"
)

// Payload is a validated write request exposing its explicitly set fields.
type Payload interface {
	Fields() domain.FieldMap
}

// Option configures a Service.
type Option func(*settings)

type settings struct {
	metrics          *observability.Metrics
	referencedDetail string
}

// WithMetrics records operation metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithReferencedDetail sets the message returned when a delete is blocked by
// rows referencing the record.
func WithReferencedDetail(detail string) Option {
	return func(s *settings) {
		s.referencedDetail = detail
	}
}

// Service is the entity-agnostic business-rule layer over a repository.
type Service[T any, K comparable] struct {
	store            repository.Store[T, K]
	entity           string
	logger           zerolog.Logger
	metrics          *observability.Metrics
	referencedDetail string
}

// New wraps store. entity is the display name used in errors.
func New[T any, K comparable](store repository.Store[T, K], entity string, logger zerolog.Logger, opts ...Option) *Service[T, K] {
	s := settings{
		referencedDetail: fmt.Sprintf("cannot delete %s: it is referenced by other records", entity),
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Service[T, K]{
		store:            store,
		entity:           entity,
		logger:           observability.WithComponent(logger, "service").With().Str("entity", entity).Logger(),
		metrics:          s.metrics,
		referencedDetail: s.referencedDetail,
	}
}

// Entity returns the display name of the managed entity.
func (s *Service[T, K]) Entity() string {
	return s.entity
}

// GetByID returns the record with id or a NotFoundError.
func (s *Service[T, K]) GetByID(ctx context.Context, id K) (rec *T, err error) {
	defer s.observe("get", time.Now(), &err)
	return s.getByID(ctx, id)
}

func (s *Service[T, K]) getByID(ctx context.Context, id K) (*T, error) {
	rec, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.wrap(err, "get "+s.entity)
	}
	if !found {
		return nil, domain.NewNotFoundError(s.entity, id)
	}
	return rec, nil
}

// GetAll lists records.
func (s *Service[T, K]) GetAll(ctx context.Context, opts repository.ListOptions) (recs []*T, err error) {
	defer s.observe("list", time.Now(), &err)

	recs, err = s.store.FindAll(ctx, opts)
	if err != nil {
		return nil, s.wrap(err, "list "+s.entity)
	}
	return recs, nil
}

// Create stores the explicitly set fields of payload.
func (s *Service[T, K]) Create(ctx context.Context, payload Payload) (*T, error) {
	return s.CreateFields(ctx, payload.Fields())
}

// CreateFields stores fields as a new record.
func (s *Service[T, K]) CreateFields(ctx context.Context, fields domain.FieldMap) (*T, error) {
	return s.create(ctx, fields, nil)
}

// create runs check, when given, before inserting.
func (s *Service[T, K]) create(ctx context.Context, fields domain.FieldMap, check func(context.Context) error) (rec *T, err error) {
	defer s.observe("create", time.Now(), &err)

	if check != nil {
		if err := check(ctx); err != nil {
			return nil, s.wrap(err, "create "+s.entity)
		}
	}

	rec, err = s.store.Create(ctx, fields)
	if err != nil {
		return nil, s.wrap(err, "create "+s.entity)
	}
	return rec, nil
}

// Update applies the explicitly set fields of payload to the record with id.
func (s *Service[T, K]) Update(ctx context.Context, id K, payload Payload) (*T, error) {
	return s.UpdateFields(ctx, id, payload.Fields())
}

// UpdateFields confirms the record exists, then writes fields. An empty
// field map returns the current record without issuing a write.
func (s *Service[T, K]) UpdateFields(ctx context.Context, id K, fields domain.FieldMap) (*T, error) {
	return s.update(ctx, id, fields, nil)
}

// update runs check against the current record, when given, after the
// existence check and before writing.
func (s *Service[T, K]) update(ctx context.Context, id K, fields domain.FieldMap, check func(context.Context, *T) error) (rec *T, err error) {
	defer s.observe("update", time.Now(), &err)

	current, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fields.Len() == 0 {
		return current, nil
	}
	if check != nil {
		if err := check(ctx, current); err != nil {
			return nil, s.wrap(err, "update "+s.entity)
		}
	}

	rec, err = s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, s.wrap(err, "update "+s.entity)
	}
	return rec, nil
}

// Delete confirms the record exists, then removes it. A delete blocked by
// referencing rows fails with a DatabaseError and leaves the record in place.
func (s *Service[T, K]) Delete(ctx context.Context, id K) (err error) {
	defer s.observe("delete", time.Now(), &err)

	if _, err := s.getByID(ctx, id); err != nil {
		return err
	}

	if _, err := s.store.Delete(ctx, id); err != nil {
		var fk *domain.ForeignKeyError
		if errors.As(err, &fk) {
			s.logger.Warn().Interface("id", id).Str("constraint", fk.Detail).Msg("delete blocked by referencing records")
			return domain.NewDatabaseError(s.referencedDetail, fk.Cause)
		}
		return s.wrap(err, "delete "+s.entity)
	}
	return nil
}

// wrap returns domain errors unchanged and wraps anything else.
func (s *Service[T, K]) wrap(err error, detail string) error {
	if domain.IsDomainError(err) {
		return err
	}
	return domain.NewDatabaseError(detail, err)
}

// observe records metrics for one operation and logs rule rejections.
func (s *Service[T, K]) observe(operation string, start time.Time, errp *error) {
	err := *errp
	s.metrics.RecordOperation(s.entity, operation, time.Since(start).Seconds(), err)

	switch domain.ErrorKind(err) {
	case domain.KindDuplicate, domain.KindForeignKey, domain.KindInvalidInput:
		s.logger.Warn().Err(err).Str("operation", operation).Msg("request rejected")
	case domain.KindNotFound:
		s.logger.Debug().Err(err).Str("operation", operation).Msg("record not found")
	}
}
