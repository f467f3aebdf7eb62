package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/hmans/coursegraph/internal/entity"
)

// SQLite is a Store backed by a SQLite database through GORM. List fields are
// stored as JSON columns and ids are UUIDs.
type SQLite struct {
	db      *gorm.DB
	users   *gormCollection[entity.User, *entity.User]
	courses *gormCollection[entity.Course, *entity.Course]
}

// OpenSQLite opens (creating if needed) the database at path and migrates the tables.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite store: no database path configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	if err := db.AutoMigrate(&entity.User{}, &entity.Course{}); err != nil {
		return nil, fmt.Errorf("migrating sqlite: %w", err)
	}

	return &SQLite{
		db:      db,
		users:   &gormCollection[entity.User, *entity.User]{kind: entity.KindUser, db: db, now: entity.Now},
		courses: &gormCollection[entity.Course, *entity.Course]{kind: entity.KindCourse, db: db, now: entity.Now},
	}, nil
}

func (s *SQLite) Users() Collection[entity.User]     { return s.users }
func (s *SQLite) Courses() Collection[entity.Course] { return s.courses }

// Close closes the underlying database handle.
func (s *SQLite) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormCollection[T any, P record[T]] struct {
	kind entity.Kind
	db   *gorm.DB
	now  func() time.Time
}

var naming = schema.NamingStrategy{}

// column maps a wire field name to its column name.
func column(field string) string {
	if field == "_id" {
		return "id"
	}
	return naming.ColumnName("", field)
}

func (c *gormCollection[T, P]) Find(ctx context.Context, filter Filter) ([]*T, error) {
	if err := checkFilter[T, P](filter); err != nil {
		return nil, err
	}

	query := c.db.WithContext(ctx).Model(new(T))
	for field, value := range filter {
		query = query.Where(map[string]any{column(field): value})
	}

	result := make([]*T, 0)
	if err := query.Order("rowid").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("finding %s: %w", c.kind.Collection(), err)
	}
	return result, nil
}

func (c *gormCollection[T, P]) FindByID(ctx context.Context, id string) (*T, error) {
	var doc T
	if err := c.db.WithContext(ctx).Take(&doc, "id = ?", id).Error; err != nil {
		return nil, c.wrap("finding", id, err)
	}
	return &doc, nil
}

func (c *gormCollection[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	doc := P(P(rec).Clone())
	if doc.RecordID() == "" {
		doc.SetRecordID(uuid.NewString())
	}
	doc.Touch(c.now())

	if err := c.db.WithContext(ctx).Create((*T)(doc)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, doc.RecordID())
		}
		return nil, fmt.Errorf("inserting into %s: %w", c.kind.Collection(), err)
	}
	return (*T)(doc), nil
}

func (c *gormCollection[T, P]) UpdateByID(ctx context.Context, id string, fields entity.Fields) (*T, error) {
	if err := checkFields[T, P](fields); err != nil {
		return nil, err
	}

	var doc T
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&doc, "id = ?", id).Error; err != nil {
			return err
		}
		if err := P(&doc).Apply(fields); err != nil {
			return err
		}
		P(&doc).Touch(c.now())
		return tx.Save(&doc).Error
	})
	if err != nil {
		return nil, c.wrap("updating", id, err)
	}
	return &doc, nil
}

func (c *gormCollection[T, P]) DeleteByID(ctx context.Context, id string) (*T, error) {
	var doc T
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&doc, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&doc).Error
	})
	if err != nil {
		return nil, c.wrap("deleting", id, err)
	}
	return &doc, nil
}

func (c *gormCollection[T, P]) wrap(op, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s %s %s: %w", op, c.kind, id, err)
}
