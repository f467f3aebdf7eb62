package graph

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
	"github.com/hmans/coursegraph/internal/entity"
	"github.com/hmans/coursegraph/internal/graph/model"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/ast"
)

// Config configures the executable schema.
type Config struct {
	Resolvers ResolverRoot
	// Registry defaults to DefaultRegistry().
	Registry *Registry
	// Log receives the details of errors that are reported to clients as internal errors.
	Log zerolog.Logger
}

type ResolverRoot interface {
	Course() CourseResolver
	Mutation() MutationResolver
	Query() QueryResolver
	User() UserResolver
}

type CourseResolver interface {
	Instructor(ctx context.Context, obj *entity.Course) (*entity.User, error)
}

type MutationResolver interface {
	NewUser(ctx context.Context, name string, email string) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) ([]*entity.User, error)
	UpdateUser(ctx context.Context, id string, updatedValue model.UpdateUserInput) (*entity.User, error)
	NewCourse(ctx context.Context, input model.NewCourseInput) (*entity.Course, error)
	DeleteCourse(ctx context.Context, id string) (*entity.Course, error)
}

type QueryResolver interface {
	Hello(ctx context.Context) (*string, error)
	Users(ctx context.Context) ([]*entity.User, error)
	User(ctx context.Context, id string) (*entity.User, error)
	Courses(ctx context.Context) ([]*entity.Course, error)
	Course(ctx context.Context, id string) (*entity.Course, error)
	Me(ctx context.Context) (*entity.User, error)
}

type UserResolver interface {
	Courses(ctx context.Context, obj *entity.User) ([]*entity.Course, error)
}

// NewExecutableSchema creates an ExecutableSchema from the Config.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry()
	}
	return &executableSchema{
		resolvers: cfg.Resolvers,
		registry:  cfg.Registry,
		bindings:  defaultBindings,
		log:       cfg.Log,
	}
}

type executableSchema struct {
	resolvers ResolverRoot
	registry  *Registry
	bindings  bindings
	log       zerolog.Logger
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.registry.AST()
}

// Complexity leaves every field at the default cost of one plus its children.
func (e *executableSchema) Complexity(ctx context.Context, typeName, field string, childComplexity int, rawArgs map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	ec := executionContext{opCtx, e}
	first := true

	var root string
	switch opCtx.Operation.Operation {
	case ast.Query:
		root = "Query"
	case ast.Mutation:
		root = "Mutation"
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false
		ctx = graphql.WithFieldContext(ctx, &graphql.FieldContext{Object: root})
		data := ec.selectionSet(ctx, root, nil, opCtx.Operation.SelectionSet)
		return &graphql.Response{Data: marshal(data)}
	}
}
