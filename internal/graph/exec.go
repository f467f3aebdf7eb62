package graph

import (
	"bytes"
	"context"
	"fmt"
	"reflect"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
)

// executionContext walks one operation's selection tree. Fields are resolved
// sequentially in selection order, and a field's resolver only runs when the
// field is selected.
type executionContext struct {
	*graphql.OperationContext
	*executableSchema
}

func marshal(m graphql.Marshaler) []byte {
	var buf bytes.Buffer
	m.MarshalGQL(&buf)
	return buf.Bytes()
}

// selectionSet resolves the selected fields of obj. It returns graphql.Null when
// a non-null field came back null, so the caller nulls the nearest nullable ancestor.
func (ec *executionContext) selectionSet(ctx context.Context, typeName string, obj any, sel ast.SelectionSet) graphql.Marshaler {
	fields := graphql.CollectFields(ec.OperationContext, sel, []string{typeName})
	out := graphql.NewFieldSet(fields)

	var invalids uint32
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString(typeName)
			continue
		case "__schema", "__type":
			out.Values[i] = ec.introspect(ctx, typeName, field)
		default:
			out.Values[i] = ec.field(ctx, typeName, obj, field)
		}

		if out.Values[i] == graphql.Null && field.Definition != nil && field.Definition.Type.NonNull {
			invalids++
		}
	}

	if invalids > 0 {
		return graphql.Null
	}
	return out
}

// field runs the resolver bound to typeName.field and completes its value.
func (ec *executionContext) field(ctx context.Context, typeName string, obj any, field graphql.CollectedField) (ret graphql.Marshaler) {
	fc := &graphql.FieldContext{
		Object:     typeName,
		Field:      field,
		Args:       field.ArgumentMap(ec.Variables),
		IsMethod:   true,
		IsResolver: true,
	}
	ctx = graphql.WithFieldContext(ctx, fc)

	defer func() {
		if r := recover(); r != nil {
			ec.error(ctx, fmt.Errorf("panic resolving %s.%s: %v", typeName, field.Name, r))
			ret = graphql.Null
		}
	}()

	resolve, ok := ec.bindings.lookup(typeName, field.Name)
	if !ok {
		resolve, ok = metaBindings.lookup(typeName, field.Name)
	}
	if !ok {
		ec.error(ctx, fmt.Errorf("no resolver bound to %s.%s", typeName, field.Name))
		return graphql.Null
	}

	v, err := resolve(ctx, ec.resolvers, obj, fc.Args)
	if err != nil {
		ec.error(ctx, err)
		return graphql.Null
	}
	fc.Result = v

	return ec.complete(ctx, field.Definition.Type, field, v)
}

// complete converts a resolved value into its wire form according to typ.
func (ec *executionContext) complete(ctx context.Context, typ *ast.Type, field graphql.CollectedField, v any) graphql.Marshaler {
	if isNil(v) {
		// A nil slice for a non-null list is an empty list.
		if typ.Elem != nil && typ.NonNull && reflect.ValueOf(v).Kind() == reflect.Slice {
			return graphql.Array{}
		}
		if typ.NonNull {
			graphql.AddErrorf(ctx, "must not be null")
		}
		return graphql.Null
	}

	if typ.Elem != nil {
		return ec.completeList(ctx, typ, field, v)
	}

	def := ec.Schema().Types[typ.NamedType]
	if def != nil && def.Kind == ast.Object {
		return ec.selectionSet(ctx, typ.NamedType, v, field.Selections)
	}
	if def != nil && def.Kind == ast.Enum {
		if s, ok := v.(string); ok {
			return graphql.MarshalString(s)
		}
	}

	m, err := marshalScalar(typ.NamedType, v)
	if err != nil {
		ec.error(ctx, err)
		return graphql.Null
	}
	return m
}

func (ec *executionContext) completeList(ctx context.Context, typ *ast.Type, field graphql.CollectedField, v any) graphql.Marshaler {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		ec.error(ctx, fmt.Errorf("%s: expected a list, got %T", field.Name, v))
		return graphql.Null
	}

	ret := make(graphql.Array, rv.Len())
	for i := range ret {
		idx := i
		item := rv.Index(i).Interface()
		ctx := graphql.WithFieldContext(ctx, &graphql.FieldContext{Index: &idx, Result: item})

		ret[i] = ec.complete(ctx, typ.Elem, field, item)
		if ret[i] == graphql.Null && typ.Elem.NonNull {
			return graphql.Null
		}
	}
	return ret
}

func marshalScalar(name string, v any) (graphql.Marshaler, error) {
	switch name {
	case ScalarID:
		if s, ok := v.(string); ok {
			return graphql.MarshalID(s), nil
		}
	case ScalarString:
		switch s := v.(type) {
		case string:
			return graphql.MarshalString(s), nil
		case *string:
			return graphql.MarshalString(*s), nil
		}
	case ScalarInt:
		if n, ok := v.(int); ok {
			return graphql.MarshalInt(n), nil
		}
	case ScalarBoolean:
		if b, ok := v.(bool); ok {
			return graphql.MarshalBoolean(b), nil
		}
	}
	return nil, fmt.Errorf("cannot marshal %T as %s", v, name)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
