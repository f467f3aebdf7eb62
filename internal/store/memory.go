package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/hmans/coursegraph/internal/entity"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Memory is a thread-safe in-memory Store. Records are copied on the way in and out,
// so callers never share state with the store.
type Memory struct {
	users   *memCollection[entity.User, *entity.User]
	courses *memCollection[entity.Course, *entity.Course]
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:   newMemCollection[entity.User, *entity.User](),
		courses: newMemCollection[entity.Course, *entity.Course](),
	}
}

func (m *Memory) Users() Collection[entity.User]     { return m.users }
func (m *Memory) Courses() Collection[entity.Course] { return m.courses }
func (m *Memory) Close(context.Context) error        { return nil }

type memCollection[T any, P record[T]] struct {
	mu    sync.RWMutex
	order []string      // insertion order
	docs  map[string]*T // ID -> record

	newID func() string
	now   func() time.Time
}

func newMemCollection[T any, P record[T]]() *memCollection[T, P] {
	return &memCollection[T, P]{
		docs:  make(map[string]*T),
		newID: func() string { return gonanoid.MustGenerate(idAlphabet, 12) },
		now:   entity.Now,
	}
}

func (c *memCollection[T, P]) Find(_ context.Context, filter Filter) ([]*T, error) {
	if err := checkFilter[T, P](filter); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*T, 0, len(c.order))
	for _, id := range c.order {
		doc := P(c.docs[id])
		if matches(doc, filter) {
			result = append(result, doc.Clone())
		}
	}
	return result, nil
}

func (c *memCollection[T, P]) FindByID(_ context.Context, id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return P(doc).Clone(), nil
}

func (c *memCollection[T, P]) Create(_ context.Context, rec *T) (*T, error) {
	doc := P(P(rec).Clone())

	c.mu.Lock()
	defer c.mu.Unlock()

	if doc.RecordID() == "" {
		doc.SetRecordID(c.newID())
	}
	doc.Touch(c.now())

	id := doc.RecordID()
	if _, exists := c.docs[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	c.order = append(c.order, id)
	c.docs[id] = (*T)(doc)

	return doc.Clone(), nil
}

func (c *memCollection[T, P]) UpdateByID(_ context.Context, id string, fields entity.Fields) (*T, error) {
	if err := checkFields[T, P](fields); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}

	doc := P(P(existing).Clone())
	if err := doc.Apply(fields); err != nil {
		return nil, err
	}
	doc.Touch(c.now())
	c.docs[id] = (*T)(doc)

	return doc.Clone(), nil
}

func (c *memCollection[T, P]) DeleteByID(_ context.Context, id string) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(c.docs, id)

	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	return doc, nil
}
