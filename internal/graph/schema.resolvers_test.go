package graph

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/executor"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/hmans/coursegraph/internal/apperrors"
	"github.com/hmans/coursegraph/internal/auth"
	"github.com/hmans/coursegraph/internal/entity"
	"github.com/hmans/coursegraph/internal/events"
	"github.com/hmans/coursegraph/internal/graph/model"
	"github.com/hmans/coursegraph/internal/store"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// countingStore wraps a store and counts the calls made to each collection.
type countingStore struct {
	store.Store
	users   *countingCollection[entity.User]
	courses *countingCollection[entity.Course]
}

func newCountingStore(s store.Store) *countingStore {
	return &countingStore{
		Store:   s,
		users:   &countingCollection[entity.User]{Collection: s.Users()},
		courses: &countingCollection[entity.Course]{Collection: s.Courses()},
	}
}

func (s *countingStore) Users() store.Collection[entity.User]     { return s.users }
func (s *countingStore) Courses() store.Collection[entity.Course] { return s.courses }

func (s *countingStore) reset() {
	s.users.calls.Store(0)
	s.courses.calls.Store(0)
}

type countingCollection[T any] struct {
	store.Collection[T]
	calls atomic.Int64
	fail  error
}

func (c *countingCollection[T]) Find(ctx context.Context, f store.Filter) ([]*T, error) {
	c.calls.Add(1)
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Collection.Find(ctx, f)
}

func (c *countingCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	c.calls.Add(1)
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Collection.FindByID(ctx, id)
}

// recordingPublisher remembers every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func setupTestResolver(t *testing.T) (*Resolver, *countingStore) {
	t.Helper()
	s := newCountingStore(store.NewMemory())
	return &Resolver{Store: s, Events: &recordingPublisher{}, Log: zerolog.Nop()}, s
}

func createTestUser(t *testing.T, s store.Store, name, email string) *entity.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), entity.NewUser(name, email))
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func createTestCourse(t *testing.T, s store.Store, title, instructor string) *entity.Course {
	t.Helper()
	c, err := s.Courses().Create(context.Background(), &entity.Course{
		Title:       title,
		Description: title + " description",
		Instructor:  instructor,
		Price:       10,
	})
	if err != nil {
		t.Fatalf("failed to create test course: %v", err)
	}
	return c
}

// execute runs a document through gqlgen's executor the way the HTTP handler does.
func execute(t *testing.T, ctx context.Context, es graphql.ExecutableSchema, query string, vars map[string]any) *graphql.Response {
	t.Helper()
	exec := executor.New(es)
	exec.Use(extension.Introspection{})
	return dispatch(ctx, exec, query, vars)
}

func dispatch(ctx context.Context, exec *executor.Executor, query string, vars map[string]any) *graphql.Response {
	ctx = graphql.StartOperationTrace(ctx)
	opCtx, errs := exec.CreateOperationContext(ctx, &graphql.RawParams{Query: query, Variables: vars})
	if errs != nil {
		return &graphql.Response{Errors: errs}
	}
	handler, ctx := exec.DispatchOperation(ctx, opCtx)
	return handler(ctx)
}

func run(t *testing.T, r *Resolver, query string, vars map[string]any) (map[string]any, gqlerror.List) {
	t.Helper()
	return runCtx(t, context.Background(), r, query, vars)
}

func runCtx(t *testing.T, ctx context.Context, r *Resolver, query string, vars map[string]any) (map[string]any, gqlerror.List) {
	t.Helper()
	resp := execute(t, ctx, NewExecutableSchema(Config{Resolvers: r, Log: r.Log}), query, vars)
	return decode(t, resp), resp.Errors
}

func decode(t *testing.T, resp *graphql.Response) map[string]any {
	t.Helper()
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("response data is not a JSON object: %s (%v)", resp.Data, err)
	}
	return data
}

func mustNoErrors(t *testing.T, errs gqlerror.List) {
	t.Helper()
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func code(err *gqlerror.Error) any {
	if err.Extensions == nil {
		return nil
	}
	return err.Extensions["code"]
}

func TestQueryHello(t *testing.T) {
	resolver, _ := setupTestResolver(t)

	data, errs := run(t, resolver, `{ hello }`, nil)
	mustNoErrors(t, errs)
	if data["hello"] != "Hello, World!" {
		t.Errorf("hello = %v", data["hello"])
	}
}

func TestQueryUsers(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	createTestUser(t, s, "Bob", "bob@example.com")
	createTestCourse(t, s, "Go", alice.ID)
	s.reset()

	t.Run("only requested fields are returned", func(t *testing.T) {
		data, errs := run(t, resolver, `{ users { name } }`, nil)
		mustNoErrors(t, errs)

		users := data["users"].([]any)
		if len(users) != 2 {
			t.Fatalf("users count = %d, want 2", len(users))
		}
		first := users[0].(map[string]any)
		if len(first) != 1 || first["name"] != "Alice" {
			t.Errorf("users[0] = %v, want only name Alice", first)
		}
	})

	t.Run("unselected relations are never resolved", func(t *testing.T) {
		s.reset()
		_, errs := run(t, resolver, `{ users { name } }`, nil)
		mustNoErrors(t, errs)

		if got := s.users.calls.Load(); got != 1 {
			t.Errorf("user collection calls = %d, want 1", got)
		}
		if got := s.courses.calls.Load(); got != 0 {
			t.Errorf("course collection calls = %d, want 0", got)
		}
	})

	t.Run("one course scan per user when courses are selected", func(t *testing.T) {
		s.reset()
		_, errs := run(t, resolver, `{ users { name courses { title } } }`, nil)
		mustNoErrors(t, errs)

		if got := s.courses.calls.Load(); got != 2 {
			t.Errorf("course collection calls = %d, want 2", got)
		}
	})

	t.Run("empty store yields empty list", func(t *testing.T) {
		empty, _ := setupTestResolver(t)
		data, errs := run(t, empty, `{ users { _id } courses { _id } }`, nil)
		mustNoErrors(t, errs)
		if users, ok := data["users"].([]any); !ok || len(users) != 0 {
			t.Errorf("users = %#v, want []", data["users"])
		}
		if courses, ok := data["courses"].([]any); !ok || len(courses) != 0 {
			t.Errorf("courses = %#v, want []", data["courses"])
		}
	})
}

func TestUserCourses(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	bob := createTestUser(t, s, "Bob", "bob@example.com")
	createTestCourse(t, s, "Go", alice.ID)
	createTestCourse(t, s, "Rust", alice.ID)

	t.Run("courses of instructor", func(t *testing.T) {
		got, err := resolver.User().Courses(context.Background(), alice)
		if err != nil {
			t.Fatalf("Courses() error = %v", err)
		}
		if len(got) != 2 || got[0].Title != "Go" || got[1].Title != "Rust" {
			t.Errorf("Courses() = %v", got)
		}
	})

	t.Run("user without courses gets empty list, never null", func(t *testing.T) {
		data, errs := run(t, resolver, `query($id: ID!) { user(id: $id) { courses { _id } } }`, map[string]any{"id": bob.ID})
		mustNoErrors(t, errs)

		user := data["user"].(map[string]any)
		courses, ok := user["courses"].([]any)
		if !ok {
			t.Fatalf("courses = %#v, want a list", user["courses"])
		}
		if len(courses) != 0 {
			t.Errorf("courses count = %d, want 0", len(courses))
		}
	})
}

func TestCourseInstructor(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	course := createTestCourse(t, s, "Go", alice.ID)

	t.Run("resolves stored instructor id", func(t *testing.T) {
		data, errs := run(t, resolver, `query($id: ID!) { course(id: $id) { title instructor { _id name } } }`, map[string]any{"id": course.ID})
		mustNoErrors(t, errs)

		c := data["course"].(map[string]any)
		instructor := c["instructor"].(map[string]any)
		if instructor["_id"] != alice.ID || instructor["name"] != "Alice" {
			t.Errorf("instructor = %v, want Alice (%s)", instructor, alice.ID)
		}
	})

	t.Run("dangling instructor resolves to null", func(t *testing.T) {
		orphan := createTestCourse(t, s, "Orphan", "missing-user")
		got, err := resolver.Course().Instructor(context.Background(), orphan)
		if err != nil {
			t.Fatalf("Instructor() error = %v", err)
		}
		if got != nil {
			t.Errorf("Instructor() = %v, want nil", got)
		}
	})
}

func TestQueryCourse(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	course := createTestCourse(t, s, "Go", alice.ID)

	t.Run("exact match", func(t *testing.T) {
		got, err := resolver.Query().Course(context.Background(), course.ID)
		if err != nil {
			t.Fatalf("Course() error = %v", err)
		}
		if got == nil || got.Title != "Go" {
			t.Errorf("Course() = %v", got)
		}
	})

	t.Run("not found is null, not an error", func(t *testing.T) {
		data, errs := run(t, resolver, `{ course(id: "nonexistent") { title } }`, nil)
		mustNoErrors(t, errs)
		if v, ok := data["course"]; !ok || v != nil {
			t.Errorf("course = %v, want null", v)
		}
	})

	t.Run("list fields and timestamps", func(t *testing.T) {
		data, errs := run(t, resolver, `query($id: ID!) { course(id: $id) { students whatYouWillLearn price isFree createdAt } }`, map[string]any{"id": course.ID})
		mustNoErrors(t, errs)

		c := data["course"].(map[string]any)
		if students, ok := c["students"].([]any); !ok || len(students) != 0 {
			t.Errorf("students = %#v, want []", c["students"])
		}
		if c["price"] != float64(10) || c["isFree"] != false {
			t.Errorf("course = %v", c)
		}
		if ts, _ := c["createdAt"].(string); ts == "" {
			t.Errorf("createdAt = %v, want RFC 3339 string", c["createdAt"])
		}
	})
}

func TestMutationNewUser(t *testing.T) {
	resolver, s := setupTestResolver(t)
	pub := resolver.Events.(*recordingPublisher)

	t.Run("defaults", func(t *testing.T) {
		data, errs := run(t, resolver, `mutation { newUser(name: "Carol", email: "carol@example.com") { _id name email role avatar verified googleId } }`, nil)
		mustNoErrors(t, errs)

		u := data["newUser"].(map[string]any)
		if u["_id"] == "" || u["name"] != "Carol" || u["email"] != "carol@example.com" {
			t.Errorf("newUser = %v", u)
		}
		if u["role"] != entity.DefaultRole || u["avatar"] != "" || u["verified"] != false || u["googleId"] != nil {
			t.Errorf("newUser defaults = %v", u)
		}

		stored, err := s.Users().FindByID(context.Background(), u["_id"].(string))
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if stored.Name != "Carol" {
			t.Errorf("stored name = %q", stored.Name)
		}
		if got := pub.types(); len(got) != 1 || got[0] != events.UserCreated {
			t.Errorf("events = %v, want [user.created]", got)
		}
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		_, err := resolver.Mutation().NewUser(context.Background(), "  ", "x@example.com")
		if !apperrors.IsValidation(err) {
			t.Errorf("NewUser() error = %v, want validation error", err)
		}
	})

	t.Run("values are stored as given", func(t *testing.T) {
		got, err := resolver.Mutation().NewUser(context.Background(), " Zed ", "zed@example.com")
		if err != nil {
			t.Fatalf("NewUser() error = %v", err)
		}
		if got.Name != " Zed " {
			t.Errorf("name = %q, want %q", got.Name, " Zed ")
		}
	})

	t.Run("missing argument fails validation before any resolver runs", func(t *testing.T) {
		s.reset()
		_, errs := run(t, resolver, `mutation { newUser(name: "Dan") { _id } }`, nil)
		if len(errs) == 0 {
			t.Fatal("expected validation error")
		}
		if s.users.calls.Load() != 0 {
			t.Error("store was accessed for an invalid document")
		}
	})
}

func TestMutationDeleteUser(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	bob := createTestUser(t, s, "Bob", "bob@example.com")
	course := createTestCourse(t, s, "Go", alice.ID)

	t.Run("returns remaining users", func(t *testing.T) {
		data, errs := run(t, resolver, `mutation($id: ID!) { deleteUser(id: $id) { _id name } }`, map[string]any{"id": alice.ID})
		mustNoErrors(t, errs)

		remaining := data["deleteUser"].([]any)
		if len(remaining) != 1 || remaining[0].(map[string]any)["_id"] != bob.ID {
			t.Errorf("deleteUser = %v, want only Bob", remaining)
		}
	})

	t.Run("courses are not cascaded", func(t *testing.T) {
		data, errs := run(t, resolver, `query($id: ID!) { course(id: $id) { title instructor { name } } }`, map[string]any{"id": course.ID})
		mustNoErrors(t, errs)

		c := data["course"].(map[string]any)
		if c["title"] != "Go" || c["instructor"] != nil {
			t.Errorf("course = %v, want Go with null instructor", c)
		}
	})

	t.Run("unknown id is null and deletes nothing", func(t *testing.T) {
		data, errs := run(t, resolver, `mutation { deleteUser(id: "nope") { _id } }`, nil)
		mustNoErrors(t, errs)
		if v, ok := data["deleteUser"]; !ok || v != nil {
			t.Errorf("deleteUser = %v, want null", v)
		}
		users, _ := s.Users().Find(context.Background(), nil)
		if len(users) != 1 {
			t.Errorf("users count = %d, want 1", len(users))
		}
	})
}

func TestMutationUpdateUser(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	ctx := context.Background()

	t.Run("partial update", func(t *testing.T) {
		name := "Alicia"
		got, err := resolver.Mutation().UpdateUser(ctx, alice.ID, model.UpdateUserInput{Name: &name})
		if err != nil {
			t.Fatalf("UpdateUser() error = %v", err)
		}
		if got.Name != "Alicia" || got.Email != "alice@example.com" {
			t.Errorf("UpdateUser() = %+v", got)
		}
	})

	t.Run("empty strings count as absent", func(t *testing.T) {
		empty := ""
		_, err := resolver.Mutation().UpdateUser(ctx, alice.ID, model.UpdateUserInput{Name: &empty, Email: &empty})
		if !apperrors.IsValidation(err) {
			t.Errorf("UpdateUser() error = %v, want validation error", err)
		}
	})

	t.Run("neither field fails and writes nothing", func(t *testing.T) {
		data, errs := run(t, resolver, `mutation($id: ID!) { updateUser(id: $id, updatedValue: {}) { name } }`, map[string]any{"id": alice.ID})
		if len(errs) != 1 {
			t.Fatalf("errors = %v, want exactly one", errs)
		}
		if errs[0].Message != "at least one field (name or email) must be provided" {
			t.Errorf("message = %q", errs[0].Message)
		}
		if code(errs[0]) != CodeBadUserInput {
			t.Errorf("code = %v, want %s", code(errs[0]), CodeBadUserInput)
		}
		if v, ok := data["updateUser"]; !ok || v != nil {
			t.Errorf("updateUser = %v, want null", v)
		}

		stored, _ := s.Users().FindByID(ctx, alice.ID)
		if stored.Name != "Alicia" {
			t.Errorf("stored name = %q, want unchanged", stored.Name)
		}
	})

	t.Run("variables", func(t *testing.T) {
		data, errs := run(t, resolver, `mutation($id: ID!, $v: UpdateUserInput!) { updateUser(id: $id, updatedValue: $v) { email } }`,
			map[string]any{"id": alice.ID, "v": map[string]any{"email": "a@example.com"}})
		mustNoErrors(t, errs)
		if got := data["updateUser"].(map[string]any)["email"]; got != "a@example.com" {
			t.Errorf("email = %v", got)
		}
	})

	t.Run("unknown id is null", func(t *testing.T) {
		name := "Ghost"
		got, err := resolver.Mutation().UpdateUser(ctx, "nope", model.UpdateUserInput{Name: &name})
		if err != nil || got != nil {
			t.Errorf("UpdateUser() = %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("non-empty values are stored as given", func(t *testing.T) {
		for _, name := range []string{"   ", " Bob "} {
			data, errs := run(t, resolver, `mutation($id: ID!, $name: String) { updateUser(id: $id, updatedValue: {name: $name}) { name } }`,
				map[string]any{"id": alice.ID, "name": name})
			mustNoErrors(t, errs)
			if got := data["updateUser"].(map[string]any)["name"]; got != name {
				t.Errorf("name = %q, want %q", got, name)
			}

			stored, _ := s.Users().FindByID(ctx, alice.ID)
			if stored.Name != name {
				t.Errorf("stored name = %q, want %q", stored.Name, name)
			}
		}
	})
}

func TestMutationNewCourse(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")

	t.Run("creates course for existing instructor", func(t *testing.T) {
		data, errs := run(t, resolver, `mutation($in: NewCourseInput!) { newCourse(input: $in) { title price requirements instructor { name } } }`,
			map[string]any{"in": map[string]any{
				"title":        "Go",
				"description":  "Learn Go",
				"instructor":   alice.ID,
				"price":        json.Number("25"),
				"requirements": []any{"a laptop"},
			}})
		mustNoErrors(t, errs)

		c := data["newCourse"].(map[string]any)
		if c["title"] != "Go" || c["price"] != float64(25) {
			t.Errorf("newCourse = %v", c)
		}
		if c["instructor"].(map[string]any)["name"] != "Alice" {
			t.Errorf("instructor = %v", c["instructor"])
		}
		if reqs := c["requirements"].([]any); len(reqs) != 1 || reqs[0] != "a laptop" {
			t.Errorf("requirements = %v", reqs)
		}
	})

	t.Run("unknown instructor is rejected and nothing is inserted", func(t *testing.T) {
		before, _ := s.Courses().Find(context.Background(), nil)
		_, errs := run(t, resolver, `mutation { newCourse(input: {title: "X", description: "Y", instructor: "ghost"}) { _id } }`, nil)
		if len(errs) != 1 || code(errs[0]) != CodeBadUserInput {
			t.Fatalf("errors = %v, want one BAD_USER_INPUT", errs)
		}
		after, _ := s.Courses().Find(context.Background(), nil)
		if len(after) != len(before) {
			t.Errorf("courses count = %d, want %d", len(after), len(before))
		}
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		_, errs := run(t, resolver, `mutation($id: ID!) { newCourse(input: {title: "  ", description: "Y", instructor: $id}) { _id } }`,
			map[string]any{"id": alice.ID})
		if len(errs) != 1 || code(errs[0]) != CodeBadUserInput {
			t.Fatalf("errors = %v, want one BAD_USER_INPUT", errs)
		}
	})

	t.Run("text is stored as given", func(t *testing.T) {
		data, errs := run(t, resolver, `mutation($id: ID!) { newCourse(input: {title: " Rust ", description: "Y", instructor: $id}) { _id title } }`,
			map[string]any{"id": alice.ID})
		mustNoErrors(t, errs)
		c := data["newCourse"].(map[string]any)
		if c["title"] != " Rust " {
			t.Errorf("title = %q, want %q", c["title"], " Rust ")
		}
	})
}

func TestMutationDeleteCourse(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	course := createTestCourse(t, s, "Go", alice.ID)

	got, err := resolver.Mutation().DeleteCourse(context.Background(), course.ID)
	if err != nil || got == nil || got.ID != course.ID {
		t.Fatalf("DeleteCourse() = %v, %v", got, err)
	}

	got, err = resolver.Mutation().DeleteCourse(context.Background(), course.ID)
	if err != nil || got != nil {
		t.Errorf("second DeleteCourse() = %v, %v; want nil, nil", got, err)
	}
}

func TestQueryMe(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")

	t.Run("anonymous", func(t *testing.T) {
		data, errs := run(t, resolver, `{ me { name } }`, nil)
		mustNoErrors(t, errs)
		if data["me"] != nil {
			t.Errorf("me = %v, want null", data["me"])
		}
	})

	t.Run("viewer", func(t *testing.T) {
		ctx := auth.WithViewer(context.Background(), auth.Viewer{UserID: alice.ID, Role: "user"})
		data, errs := runCtx(t, ctx, resolver, `{ me { name } }`, nil)
		mustNoErrors(t, errs)
		if data["me"].(map[string]any)["name"] != "Alice" {
			t.Errorf("me = %v", data["me"])
		}
	})
}

func TestSelectionShaping(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	createTestCourse(t, s, "Go", alice.ID)

	t.Run("aliases and fragments", func(t *testing.T) {
		query := `
			query {
				people: users { ...who courses { heading: title } }
				first: users { ... on User { email } }
			}
			fragment who on User { n: name __typename }`
		data, errs := run(t, resolver, query, nil)
		mustNoErrors(t, errs)

		person := data["people"].([]any)[0].(map[string]any)
		if person["n"] != "Alice" || person["__typename"] != "User" {
			t.Errorf("people[0] = %v", person)
		}
		course := person["courses"].([]any)[0].(map[string]any)
		if course["heading"] != "Go" {
			t.Errorf("course = %v", course)
		}
		if data["first"].([]any)[0].(map[string]any)["email"] != "alice@example.com" {
			t.Errorf("first = %v", data["first"])
		}
	})

	t.Run("response keys follow selection order", func(t *testing.T) {
		resp := execute(t, context.Background(), NewExecutableSchema(Config{Resolvers: resolver}), `{ users { email name _id: name } }`, nil)
		mustNoErrors(t, resp.Errors)
		want := `{"users":[{"email":"alice@example.com","name":"Alice","_id":"Alice"}]}`
		if string(resp.Data) != want {
			t.Errorf("data = %s, want %s", resp.Data, want)
		}
	})

	t.Run("skip avoids the lookup", func(t *testing.T) {
		s.reset()
		data, errs := run(t, resolver, `query($skip: Boolean!) { users { name courses @skip(if: $skip) { title } } }`, map[string]any{"skip": true})
		mustNoErrors(t, errs)
		if _, ok := data["users"].([]any)[0].(map[string]any)["courses"]; ok {
			t.Error("skipped field present in response")
		}
		if got := s.courses.calls.Load(); got != 0 {
			t.Errorf("course collection calls = %d, want 0", got)
		}
	})

	t.Run("include false omits the field", func(t *testing.T) {
		data, errs := run(t, resolver, `{ users { name email @include(if: false) } }`, nil)
		mustNoErrors(t, errs)
		if _, ok := data["users"].([]any)[0].(map[string]any)["email"]; ok {
			t.Error("excluded field present in response")
		}
	})
}

func TestNullPropagation(t *testing.T) {
	resolver, s := setupTestResolver(t)
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	course := createTestCourse(t, s, "Go", alice.ID)

	es := NewExecutableSchema(Config{Resolvers: resolver}).(*executableSchema)
	broken := bindings{}
	for typeName, fields := range es.bindings {
		broken[typeName] = map[string]resolveFunc{}
		for name, fn := range fields {
			broken[typeName][name] = fn
		}
	}
	broken["Course"]["title"] = func(context.Context, ResolverRoot, any, map[string]any) (any, error) {
		return nil, nil
	}
	es.bindings = broken

	t.Run("nullable parent becomes null", func(t *testing.T) {
		resp := execute(t, context.Background(), es, `query($id: ID!) { course(id: $id) { _id title } hello }`, map[string]any{"id": course.ID})
		data := decode(t, resp)
		if v, ok := data["course"]; !ok || v != nil {
			t.Errorf("course = %v, want null", v)
		}
		if data["hello"] != "Hello, World!" {
			t.Errorf("sibling field lost: %v", data)
		}
		if len(resp.Errors) != 1 {
			t.Fatalf("errors = %v, want one", resp.Errors)
		}
		if got := resp.Errors[0].Path.String(); got != "course.title" {
			t.Errorf("error path = %q, want course.title", got)
		}
	})

	t.Run("non-null list propagates to data", func(t *testing.T) {
		resp := execute(t, context.Background(), es, `{ courses { title } }`, nil)
		if string(resp.Data) != "null" {
			t.Errorf("data = %s, want null", resp.Data)
		}
		if len(resp.Errors) != 1 || resp.Errors[0].Path.String() != "courses[0].title" {
			t.Errorf("errors = %v", resp.Errors)
		}
	})
}

func TestStoreFailureIsOpaque(t *testing.T) {
	resolver, s := setupTestResolver(t)
	s.users.fail = errors.New("connection reset by peer")

	data, errs := run(t, resolver, `{ users { name } }`, nil)
	if data != nil {
		t.Errorf("data = %v, want null", data)
	}
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want one", errs)
	}
	if errs[0].Message != "internal server error" || code(errs[0]) != CodeInternal {
		t.Errorf("error = %q (%v), want opaque internal error", errs[0].Message, code(errs[0]))
	}
}

func TestIntrospection(t *testing.T) {
	resolver, _ := setupTestResolver(t)

	t.Run("schema", func(t *testing.T) {
		data, errs := run(t, resolver, `{ __schema { queryType { name } mutationType { name } types { name kind } } }`, nil)
		mustNoErrors(t, errs)

		schema := data["__schema"].(map[string]any)
		if name := schema["queryType"].(map[string]any)["name"]; name != "Query" {
			t.Errorf("queryType.name = %v, want Query", name)
		}
		if name := schema["mutationType"].(map[string]any)["name"]; name != "Mutation" {
			t.Errorf("mutationType.name = %v, want Mutation", name)
		}
		kinds := map[string]any{}
		for _, typ := range schema["types"].([]any) {
			m := typ.(map[string]any)
			kinds[m["name"].(string)] = m["kind"]
		}
		if kinds["User"] != "OBJECT" || kinds["Course"] != "OBJECT" {
			t.Errorf("types = %v, want User and Course objects", kinds)
		}
	})

	t.Run("type by name", func(t *testing.T) {
		data, errs := run(t, resolver, `{ __type(name: "User") { kind name fields { name type { kind ofType { name } } } } }`, nil)
		mustNoErrors(t, errs)

		typ := data["__type"].(map[string]any)
		if typ["kind"] != "OBJECT" || typ["name"] != "User" {
			t.Fatalf("__type = %v", typ)
		}
		var courses map[string]any
		for _, f := range typ["fields"].([]any) {
			if m := f.(map[string]any); m["name"] == "courses" {
				courses = m
			}
		}
		if courses == nil {
			t.Fatalf("fields = %v, want a courses field", typ["fields"])
		}
		if kind := courses["type"].(map[string]any)["kind"]; kind != "NON_NULL" && kind != "LIST" {
			t.Errorf("courses type kind = %v, want a list", kind)
		}
	})

	t.Run("unknown type is null", func(t *testing.T) {
		data, errs := run(t, resolver, `{ __type(name: "Nope") { name } }`, nil)
		mustNoErrors(t, errs)
		if data["__type"] != nil {
			t.Errorf("__type = %v, want null", data["__type"])
		}
	})

	t.Run("disabled introspection is forbidden", func(t *testing.T) {
		exec := executor.New(NewExecutableSchema(Config{Resolvers: resolver, Log: resolver.Log}))
		resp := dispatch(context.Background(), exec, `{ __schema { queryType { name } } }`, nil)
		if len(resp.Errors) != 1 {
			t.Fatalf("errors = %v, want one", resp.Errors)
		}
		if got := code(resp.Errors[0]); got != CodeForbidden {
			t.Errorf("code = %v, want %s", got, CodeForbidden)
		}
	})
}

func TestEventPublishFailureDoesNotFailMutation(t *testing.T) {
	resolver, _ := setupTestResolver(t)
	resolver.Events = &recordingPublisher{err: errors.New("broker down")}

	got, err := resolver.Mutation().NewUser(context.Background(), "Eve", "eve@example.com")
	if err != nil {
		t.Fatalf("NewUser() error = %v", err)
	}
	if got == nil || got.ID == "" {
		t.Errorf("NewUser() = %v", got)
	}
}
