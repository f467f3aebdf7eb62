package graph

import (
	"context"
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"

	"github.com/hmans/coursegraph/internal/apperrors"
)

// introspect resolves the __schema and __type meta fields of the Query root.
func (ec *executionContext) introspect(ctx context.Context, typeName string, field graphql.CollectedField) graphql.Marshaler {
	fc := &graphql.FieldContext{
		Object:   typeName,
		Field:    field,
		Args:     field.ArgumentMap(ec.Variables),
		IsMethod: true,
	}
	ctx = graphql.WithFieldContext(ctx, fc)

	if ec.DisableIntrospection {
		ec.error(ctx, apperrors.NewForbiddenError("introspection disabled"))
		return graphql.Null
	}

	var v any
	switch field.Name {
	case "__schema":
		v = introspection.WrapSchema(ec.Schema())
	case "__type":
		name, err := argString(fc.Args, "name")
		if err != nil {
			ec.error(ctx, err)
			return graphql.Null
		}
		v = introspection.WrapTypeFromDef(ec.Schema(), ec.Schema().Types[name])
	}
	fc.Result = v

	return ec.complete(ctx, field.Definition.Type, field, v)
}

// introspected returns obj as *T. List items arrive as values, single fields as pointers.
func introspected[T any](obj any) *T {
	switch v := obj.(type) {
	case *T:
		return v
	case T:
		return &v
	}
	panic(fmt.Sprintf("unexpected %T", obj))
}

func meta[T any](get func(*T, map[string]any) any) resolveFunc {
	return func(_ context.Context, _ ResolverRoot, obj any, args map[string]any) (any, error) {
		return get(introspected[T](obj), args), nil
	}
}

func includeDeprecated(args map[string]any) bool {
	b, _ := args["includeDeprecated"].(bool)
	return b
}

// metaBindings resolve the fields of the introspection types.
var metaBindings = bindings{
	"__Schema": {
		"description":      meta(func(s *introspection.Schema, _ map[string]any) any { return s.Description() }),
		"types":            meta(func(s *introspection.Schema, _ map[string]any) any { return s.Types() }),
		"queryType":        meta(func(s *introspection.Schema, _ map[string]any) any { return s.QueryType() }),
		"mutationType":     meta(func(s *introspection.Schema, _ map[string]any) any { return s.MutationType() }),
		"subscriptionType": meta(func(s *introspection.Schema, _ map[string]any) any { return s.SubscriptionType() }),
		"directives":       meta(func(s *introspection.Schema, _ map[string]any) any { return s.Directives() }),
	},
	"__Type": {
		"kind":           meta(func(t *introspection.Type, _ map[string]any) any { return t.Kind() }),
		"name":           meta(func(t *introspection.Type, _ map[string]any) any { return t.Name() }),
		"description":    meta(func(t *introspection.Type, _ map[string]any) any { return t.Description() }),
		"specifiedByURL": meta(func(t *introspection.Type, _ map[string]any) any { return t.SpecifiedByURL() }),
		"fields": meta(func(t *introspection.Type, args map[string]any) any {
			return t.Fields(includeDeprecated(args))
		}),
		"interfaces":    meta(func(t *introspection.Type, _ map[string]any) any { return t.Interfaces() }),
		"possibleTypes": meta(func(t *introspection.Type, _ map[string]any) any { return t.PossibleTypes() }),
		"enumValues": meta(func(t *introspection.Type, args map[string]any) any {
			return t.EnumValues(includeDeprecated(args))
		}),
		"inputFields": meta(func(t *introspection.Type, _ map[string]any) any { return t.InputFields() }),
		"ofType":      meta(func(t *introspection.Type, _ map[string]any) any { return t.OfType() }),
		"isOneOf":     meta(func(t *introspection.Type, _ map[string]any) any { return t.IsOneOf() }),
	},
	"__Field": {
		"name":              meta(func(f *introspection.Field, _ map[string]any) any { return f.Name }),
		"description":       meta(func(f *introspection.Field, _ map[string]any) any { return f.Description() }),
		"args":              meta(func(f *introspection.Field, _ map[string]any) any { return f.Args }),
		"type":              meta(func(f *introspection.Field, _ map[string]any) any { return f.Type }),
		"isDeprecated":      meta(func(f *introspection.Field, _ map[string]any) any { return f.IsDeprecated() }),
		"deprecationReason": meta(func(f *introspection.Field, _ map[string]any) any { return f.DeprecationReason() }),
	},
	"__InputValue": {
		"name":              meta(func(v *introspection.InputValue, _ map[string]any) any { return v.Name }),
		"description":       meta(func(v *introspection.InputValue, _ map[string]any) any { return v.Description() }),
		"type":              meta(func(v *introspection.InputValue, _ map[string]any) any { return v.Type }),
		"defaultValue":      meta(func(v *introspection.InputValue, _ map[string]any) any { return v.DefaultValue }),
		"isDeprecated":      meta(func(v *introspection.InputValue, _ map[string]any) any { return v.IsDeprecated() }),
		"deprecationReason": meta(func(v *introspection.InputValue, _ map[string]any) any { return v.DeprecationReason() }),
	},
	"__EnumValue": {
		"name":              meta(func(v *introspection.EnumValue, _ map[string]any) any { return v.Name }),
		"description":       meta(func(v *introspection.EnumValue, _ map[string]any) any { return v.Description() }),
		"isDeprecated":      meta(func(v *introspection.EnumValue, _ map[string]any) any { return v.IsDeprecated() }),
		"deprecationReason": meta(func(v *introspection.EnumValue, _ map[string]any) any { return v.DeprecationReason() }),
	},
	"__Directive": {
		"name":         meta(func(d *introspection.Directive, _ map[string]any) any { return d.Name }),
		"description":  meta(func(d *introspection.Directive, _ map[string]any) any { return d.Description() }),
		"isRepeatable": meta(func(d *introspection.Directive, _ map[string]any) any { return d.IsRepeatable }),
		"locations":    meta(func(d *introspection.Directive, _ map[string]any) any { return d.Locations }),
		"args":         meta(func(d *introspection.Directive, _ map[string]any) any { return d.Args }),
	},
}
