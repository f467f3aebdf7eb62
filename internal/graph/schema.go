package graph

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hmans/coursegraph/internal/entity"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// ErrUnknownOperation is returned by Describe for names that are not root operations.
var ErrUnknownOperation = errors.New("unknown operation")

// Built-in scalar names used by the schema.
const (
	ScalarID      = "ID"
	ScalarString  = "String"
	ScalarInt     = "Int"
	ScalarBoolean = "Boolean"
)

// TypeRef describes the type of a field, argument or operation result.
type TypeRef struct {
	Name string
	// NonNull applies to the outer type: the list itself for list types.
	NonNull bool
	List    bool
	// ElemNonNull applies to list elements.
	ElemNonNull bool
}

func (t TypeRef) String() string {
	s := t.Name
	if t.List {
		if t.ElemNonNull {
			s += "!"
		}
		s = "[" + s + "]"
	}
	if t.NonNull {
		s += "!"
	}
	return s
}

func named(name string) TypeRef   { return TypeRef{Name: name} }
func required(name string) TypeRef { return TypeRef{Name: name, NonNull: true} }

// listOf returns [name!]!, or [name!] when nullable is set.
func listOf(name string, nullable bool) TypeRef {
	return TypeRef{Name: name, List: true, ElemNonNull: true, NonNull: !nullable}
}

// Arg is a named, typed argument.
type Arg struct {
	Name string
	Type TypeRef
}

// Required reports whether the argument must be supplied.
func (a Arg) Required() bool { return a.Type.NonNull }

// Field is a field of an object or input type.
type Field struct {
	Name        string
	Type        TypeRef
	Description string
}

// Object is an output type backed by an entity kind.
type Object struct {
	Name        string
	Kind        entity.Kind
	Description string
	Fields      []Field
}

// Field returns the named field.
func (o *Object) Field(name string) (Field, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Input is an input object type.
type Input struct {
	Name   string
	Fields []Field
}

// Operation is a root Query or Mutation field.
type Operation struct {
	// Root is "Query" or "Mutation".
	Root        string
	Name        string
	Description string
	Args        []Arg
	Returns     TypeRef
}

// Signature renders the operation the way it appears in SDL.
func (op *Operation) Signature() string {
	var b strings.Builder
	b.WriteString(op.Name)
	if len(op.Args) > 0 {
		args := make([]string, len(op.Args))
		for i, a := range op.Args {
			args[i] = a.Name + ": " + a.Type.String()
		}
		b.WriteString("(" + strings.Join(args, ", ") + ")")
	}
	b.WriteString(": " + op.Returns.String())
	return b.String()
}

// Registry is the static declaration of the API surface.
type Registry struct {
	Objects   []*Object
	Inputs    []*Input
	Queries   []*Operation
	Mutations []*Operation

	ops    map[string]*Operation
	sdl    string
	schema *ast.Schema
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry describing the users and courses API.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := NewRegistry(declaredObjects(), declaredInputs(), declaredQueries(), declaredMutations())
		if err != nil {
			panic(fmt.Sprintf("graph: invalid schema declaration: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// NewRegistry renders the declarations to SDL and loads them into a validated schema.
func NewRegistry(objects []*Object, inputs []*Input, queries, mutations []*Operation) (*Registry, error) {
	r := &Registry{
		Objects:   objects,
		Inputs:    inputs,
		Queries:   queries,
		Mutations: mutations,
		ops:       make(map[string]*Operation, len(queries)+len(mutations)),
	}
	for _, op := range append(append([]*Operation{}, queries...), mutations...) {
		if _, dup := r.ops[op.Name]; dup {
			return nil, fmt.Errorf("duplicate operation %q", op.Name)
		}
		r.ops[op.Name] = op
	}
	if err := r.checkKinds(); err != nil {
		return nil, err
	}

	r.sdl = r.render()
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphqls", Input: r.sdl})
	if err != nil {
		return nil, err
	}
	r.schema = schema
	return r, nil
}

// Describe returns the declaration of a root operation.
func (r *Registry) Describe(name string) (*Operation, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return op, nil
}

// Object returns the object type with the given name.
func (r *Registry) Object(name string) (*Object, bool) {
	for _, o := range r.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// checkKinds ensures an object backed by an entity is named after it, and that no
// entity backs two objects.
func (r *Registry) checkKinds() error {
	seen := map[entity.Kind]string{}
	for _, o := range r.Objects {
		if o.Kind == 0 {
			continue
		}
		if o.Name != o.Kind.String() {
			return fmt.Errorf("object %q is backed by %s", o.Name, o.Kind)
		}
		if prev, dup := seen[o.Kind]; dup {
			return fmt.Errorf("%s backs both %q and %q", o.Kind, prev, o.Name)
		}
		seen[o.Kind] = o.Name
	}
	return nil
}

// SDL returns the schema in GraphQL schema definition language.
func (r *Registry) SDL() string { return r.sdl }

// AST returns the loaded schema used for document validation.
func (r *Registry) AST() *ast.Schema { return r.schema }

func (r *Registry) render() string {
	var b strings.Builder
	for _, o := range r.Objects {
		writeDescription(&b, "", o.Description)
		fmt.Fprintf(&b, "type %s {\n", o.Name)
		for _, f := range o.Fields {
			writeDescription(&b, "  ", f.Description)
			fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Type)
		}
		b.WriteString("}\n\n")
	}
	for _, in := range r.Inputs {
		fmt.Fprintf(&b, "input %s {\n", in.Name)
		for _, f := range in.Fields {
			fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Type)
		}
		b.WriteString("}\n\n")
	}
	writeRoot(&b, "Query", r.Queries)
	writeRoot(&b, "Mutation", r.Mutations)
	return b.String()
}

func writeRoot(b *strings.Builder, name string, ops []*Operation) {
	if len(ops) == 0 {
		return
	}
	fmt.Fprintf(b, "type %s {\n", name)
	for _, op := range ops {
		writeDescription(b, "  ", op.Description)
		fmt.Fprintf(b, "  %s\n", op.Signature())
	}
	b.WriteString("}\n\n")
}

func writeDescription(b *strings.Builder, indent, desc string) {
	if desc == "" {
		return
	}
	fmt.Fprintf(b, "%s%q\n", indent, desc)
}

func declaredObjects() []*Object {
	return []*Object{
		{
			Name:        "User",
			Kind:        entity.KindUser,
			Description: "A person who can sign in and instruct or attend courses.",
			Fields: []Field{
				{Name: "_id", Type: required(ScalarID)},
				{Name: "name", Type: required(ScalarString)},
				{Name: "email", Type: required(ScalarString)},
				{Name: "googleId", Type: named(ScalarString)},
				{Name: "role", Type: required(ScalarString)},
				{Name: "avatar", Type: required(ScalarString)},
				{Name: "verified", Type: named(ScalarBoolean)},
				{Name: "createdAt", Type: named(ScalarString)},
				{Name: "updatedAt", Type: named(ScalarString)},
				{Name: "courses", Type: listOf("Course", false), Description: "Courses this user instructs."},
			},
		},
		{
			Name:        "Course",
			Kind:        entity.KindCourse,
			Description: "A course taught by one instructor.",
			Fields: []Field{
				{Name: "_id", Type: required(ScalarID)},
				{Name: "title", Type: required(ScalarString)},
				{Name: "description", Type: required(ScalarString)},
				{Name: "instructor", Type: named("User"), Description: "Null when the instructor no longer exists."},
				{Name: "ratingsAverage", Type: required(ScalarInt)},
				{Name: "ratingsQuantity", Type: required(ScalarInt)},
				{Name: "price", Type: required(ScalarInt)},
				{Name: "category", Type: required(ScalarString)},
				{Name: "subCategory", Type: required(ScalarString)},
				{Name: "level", Type: required(ScalarString)},
				{Name: "language", Type: required(ScalarString)},
				{Name: "whatYouWillLearn", Type: listOf(ScalarString, false)},
				{Name: "requirements", Type: listOf(ScalarString, false)},
				{Name: "targetAudience", Type: listOf(ScalarString, false)},
				{Name: "isPublished", Type: required(ScalarBoolean)},
				{Name: "isFree", Type: required(ScalarBoolean)},
				{Name: "isApproved", Type: required(ScalarBoolean)},
				{Name: "isRejected", Type: required(ScalarBoolean)},
				{Name: "isFeatured", Type: required(ScalarBoolean)},
				{Name: "isTrending", Type: required(ScalarBoolean)},
				{Name: "isBestseller", Type: required(ScalarBoolean)},
				{Name: "coverImage", Type: required(ScalarString)},
				{Name: "previewVideo", Type: required(ScalarString)},
				{Name: "students", Type: listOf(ScalarString, false)},
				{Name: "createdAt", Type: required(ScalarString)},
				{Name: "updatedAt", Type: required(ScalarString)},
			},
		},
	}
}

func declaredInputs() []*Input {
	return []*Input{
		{
			Name: "UpdateUserInput",
			Fields: []Field{
				{Name: "name", Type: named(ScalarString)},
				{Name: "email", Type: named(ScalarString)},
			},
		},
		{
			Name: "NewCourseInput",
			Fields: []Field{
				{Name: "title", Type: required(ScalarString)},
				{Name: "description", Type: required(ScalarString)},
				{Name: "instructor", Type: required(ScalarID)},
				{Name: "price", Type: named(ScalarInt)},
				{Name: "category", Type: named(ScalarString)},
				{Name: "subCategory", Type: named(ScalarString)},
				{Name: "level", Type: named(ScalarString)},
				{Name: "language", Type: named(ScalarString)},
				{Name: "whatYouWillLearn", Type: listOf(ScalarString, true)},
				{Name: "requirements", Type: listOf(ScalarString, true)},
				{Name: "targetAudience", Type: listOf(ScalarString, true)},
				{Name: "isFree", Type: named(ScalarBoolean)},
				{Name: "isPublished", Type: named(ScalarBoolean)},
				{Name: "coverImage", Type: named(ScalarString)},
				{Name: "previewVideo", Type: named(ScalarString)},
			},
		},
	}
}

func declaredQueries() []*Operation {
	return []*Operation{
		{Root: "Query", Name: "hello", Returns: named(ScalarString)},
		{Root: "Query", Name: "users", Returns: listOf("User", false), Description: "Every user in storage order."},
		{Root: "Query", Name: "user", Args: []Arg{{Name: "id", Type: required(ScalarID)}}, Returns: named("User")},
		{Root: "Query", Name: "courses", Returns: listOf("Course", false), Description: "Every course in storage order."},
		{Root: "Query", Name: "course", Args: []Arg{{Name: "id", Type: required(ScalarID)}}, Returns: named("Course")},
		{Root: "Query", Name: "me", Returns: named("User"), Description: "The user identified by the bearer token."},
	}
}

func declaredMutations() []*Operation {
	return []*Operation{
		{
			Root: "Mutation", Name: "newUser",
			Args:    []Arg{{Name: "name", Type: required(ScalarString)}, {Name: "email", Type: required(ScalarString)}},
			Returns: required("User"),
		},
		{
			Root: "Mutation", Name: "deleteUser",
			Args:        []Arg{{Name: "id", Type: required(ScalarID)}},
			Returns:     listOf("User", true),
			Description: "Deletes a user and returns the remaining users, or null when no user has the id.",
		},
		{
			Root: "Mutation", Name: "updateUser",
			Args:    []Arg{{Name: "id", Type: required(ScalarID)}, {Name: "updatedValue", Type: required("UpdateUserInput")}},
			Returns: named("User"),
		},
		{
			Root: "Mutation", Name: "newCourse",
			Args:    []Arg{{Name: "input", Type: required("NewCourseInput")}},
			Returns: required("Course"),
		},
		{
			Root: "Mutation", Name: "deleteCourse",
			Args:    []Arg{{Name: "id", Type: required(ScalarID)}},
			Returns: named("Course"),
		},
	}
}
