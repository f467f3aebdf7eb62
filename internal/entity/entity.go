// Package entity defines the persisted domain records (users and courses)
// and the small contract every store backend relies on to handle them generically.
package entity

import (
	"fmt"
	"time"
)

// Kind identifies an entity type.
type Kind int

const (
	KindUser Kind = iota + 1
	KindCourse
)

// String returns the GraphQL type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "User"
	case KindCourse:
		return "Course"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Collection returns the storage collection (or table) name for the kind.
func (k Kind) Collection() string {
	switch k {
	case KindUser:
		return "users"
	case KindCourse:
		return "courses"
	default:
		return ""
	}
}

// Fields is a partial set of field values keyed by wire field name (e.g. "name", "instructor").
type Fields map[string]any

// Record is implemented by every entity so stores can handle them without reflection.
type Record interface {
	// RecordID returns the record identity.
	RecordID() string
	// SetRecordID assigns the record identity.
	SetRecordID(id string)
	// Lookup returns the value of a field by wire name.
	Lookup(field string) (any, bool)
	// Apply assigns the given fields. Unknown names or mistyped values are an error
	// and leave the record untouched.
	Apply(fields Fields) error
	// Touch stamps UpdatedAt, and CreatedAt when it is still zero.
	Touch(now time.Time)
}

// UnknownFieldError reports a field name the entity does not have.
type UnknownFieldError struct {
	Kind  Kind
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Kind, e.Field)
}

// Now returns the current time truncated the way timestamps are stored.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func touch(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func asString(kind Kind, field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s.%s: expected string, got %T", kind, field, v)
	}
	return s, nil
}

func asBool(kind Kind, field string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s.%s: expected bool, got %T", kind, field, v)
	}
	return b, nil
}

func asInt(kind Kind, field string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("%s.%s: expected int, got %T", kind, field, v)
}

func asStrings(kind Kind, field string, v any) ([]string, error) {
	switch s := v.(type) {
	case []string:
		return cloneStrings(s), nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s.%s: expected list of strings, got element %T", kind, field, item)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s.%s: expected list of strings, got %T", kind, field, v)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
