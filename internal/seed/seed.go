// Package seed loads sample users and courses into a store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hmans/coursegraph/internal/entity"
	"github.com/hmans/coursegraph/internal/store"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// ErrUnknownInstructor is returned when a course names an instructor email no user has.
var ErrUnknownInstructor = errors.New("unknown instructor")

// Fixture is the YAML document seed data is read from. Courses reference their
// instructor by email, since ids are only known once users are stored.
type Fixture struct {
	Users   []entity.User `yaml:"users"`
	Courses []Course      `yaml:"courses"`
}

// Course is a course fixture.
type Course struct {
	entity.Course   `yaml:",inline"`
	InstructorEmail string `yaml:"instructorEmail"`
}

// Result counts the records a Load inserted.
type Result struct {
	Users   int
	Courses int
}

// Parse decodes a fixture document.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	for i, u := range f.Users {
		if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Email) == "" {
			return nil, fmt.Errorf("user %d: name and email are required", i)
		}
	}
	for i, c := range f.Courses {
		if strings.TrimSpace(c.Title) == "" {
			return nil, fmt.Errorf("course %d: title is required", i)
		}
		if c.InstructorEmail == "" && c.Instructor == "" {
			return nil, fmt.Errorf("course %q: instructorEmail is required", c.Title)
		}
	}
	return &f, nil
}

// Default returns the embedded sample data.
func Default() (*Fixture, error) {
	return Parse(defaultFixtures)
}

// LoadFile reads a fixture document from path.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load inserts the fixture's users, then its courses with instructor emails
// resolved to user ids. Instructors may be fixture users or users already in s.
// Every reference is checked before anything is written.
func Load(ctx context.Context, s store.Store, f *Fixture) (Result, error) {
	var res Result

	pending := map[string]bool{}
	for _, u := range f.Users {
		pending[u.Email] = true
	}
	existing := map[string]string{}
	for _, c := range f.Courses {
		email := c.InstructorEmail
		if email == "" || pending[email] {
			continue
		}
		if _, ok := existing[email]; ok {
			continue
		}
		users, err := s.Users().Find(ctx, store.Eq("email", email))
		if err != nil {
			return res, fmt.Errorf("looking up instructor %s: %w", email, err)
		}
		if len(users) == 0 {
			return res, fmt.Errorf("%w: course %q references %s", ErrUnknownInstructor, c.Title, email)
		}
		existing[email] = users[0].ID
	}

	ids := existing
	for _, u := range f.Users {
		rec := u
		rec.ID = ""
		if rec.Role == "" {
			rec.Role = entity.DefaultRole
		}
		created, err := s.Users().Create(ctx, &rec)
		if err != nil {
			return res, fmt.Errorf("creating user %s: %w", u.Email, err)
		}
		ids[created.Email] = created.ID
		res.Users++
	}

	for _, c := range f.Courses {
		rec := c.Course
		rec.ID = ""
		if c.InstructorEmail != "" {
			rec.Instructor = ids[c.InstructorEmail]
		}
		if _, err := s.Courses().Create(ctx, &rec); err != nil {
			return res, fmt.Errorf("creating course %q: %w", c.Title, err)
		}
		res.Courses++
	}

	return res, nil
}
