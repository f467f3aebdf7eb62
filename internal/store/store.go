// Package store persists users and courses. Every backend exposes the same
// per-entity Collection contract: scan with an optional equality filter, point
// lookup, insert, update-by-id and delete-by-id. Each call is atomic on its own;
// nothing in this package spans two calls.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/hmans/coursegraph/internal/config"
	"github.com/hmans/coursegraph/internal/entity"
)

const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownField  = errors.New("unknown field")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrDuplicateID   = errors.New("duplicate record id")
)

// Filter is an equality filter keyed by wire field name. A nil or empty filter matches everything.
type Filter map[string]any

// Eq returns a filter matching records whose field equals value.
func Eq(field string, value any) Filter {
	return Filter{field: value}
}

// Collection is the persistence contract for one entity kind.
type Collection[T any] interface {
	// Find returns every record matching filter, in storage order.
	Find(ctx context.Context, filter Filter) ([]*T, error)
	// FindByID returns the record with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*T, error)
	// Create inserts rec, generating an id when it has none, and returns the stored copy.
	Create(ctx context.Context, rec *T) (*T, error)
	// UpdateByID applies fields to the record and returns the updated copy, or ErrNotFound.
	UpdateByID(ctx context.Context, id string, fields entity.Fields) (*T, error)
	// DeleteByID removes the record and returns it as it was before deletion, or ErrNotFound.
	DeleteByID(ctx context.Context, id string) (*T, error)
}

// Store groups the collections of every entity kind.
type Store interface {
	Users() Collection[entity.User]
	Courses() Collection[entity.Course]
	Close(ctx context.Context) error
}

// record is the constraint the generic backends place on entity pointer types.
type record[T any] interface {
	*T
	entity.Record
	Clone() *T
}

// Open returns the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.Database)
	case DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// checkFilter rejects filter keys the entity does not have.
func checkFilter[T any, P record[T]](filter Filter) error {
	zero := P(new(T))
	for field := range filter {
		if _, ok := zero.Lookup(field); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}
	return nil
}

// checkFields dry-runs an update against a zero record so invalid updates fail before any write.
func checkFields[T any, P record[T]](fields entity.Fields) error {
	if err := P(new(T)).Apply(fields); err != nil {
		var unknown *entity.UnknownFieldError
		if errors.As(err, &unknown) {
			return fmt.Errorf("%w: %q", ErrUnknownField, unknown.Field)
		}
		return err
	}
	return nil
}

// matches reports whether rec satisfies every condition in filter.
func matches(rec entity.Record, filter Filter) bool {
	for field, want := range filter {
		got, ok := rec.Lookup(field)
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
