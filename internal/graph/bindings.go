package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/hmans/coursegraph/internal/apperrors"
	"github.com/hmans/coursegraph/internal/entity"
	"github.com/hmans/coursegraph/internal/graph/model"
)

// resolveFunc produces the value of one field of obj. Arguments have already been
// validated against the schema; args holds their coerced values.
type resolveFunc func(ctx context.Context, r ResolverRoot, obj any, args map[string]any) (any, error)

// bindings maps a type name and field name to the function that resolves it.
type bindings map[string]map[string]resolveFunc

func (b bindings) lookup(typeName, field string) (resolveFunc, bool) {
	fn, ok := b[typeName][field]
	return fn, ok
}

// timeLayout renders timestamps as RFC 3339 with millisecond precision.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func userField(get func(*entity.User) any) resolveFunc {
	return func(_ context.Context, _ ResolverRoot, obj any, _ map[string]any) (any, error) {
		return get(obj.(*entity.User)), nil
	}
}

func courseField(get func(*entity.Course) any) resolveFunc {
	return func(_ context.Context, _ ResolverRoot, obj any, _ map[string]any) (any, error) {
		return get(obj.(*entity.Course)), nil
	}
}

var defaultBindings = bindings{
	"Query": {
		"hello": func(ctx context.Context, r ResolverRoot, _ any, _ map[string]any) (any, error) {
			return r.Query().Hello(ctx)
		},
		"users": func(ctx context.Context, r ResolverRoot, _ any, _ map[string]any) (any, error) {
			return r.Query().Users(ctx)
		},
		"user": func(ctx context.Context, r ResolverRoot, _ any, args map[string]any) (any, error) {
			id, err := argID(args, "id")
			if err != nil {
				return nil, err
			}
			return r.Query().User(ctx, id)
		},
		"courses": func(ctx context.Context, r ResolverRoot, _ any, _ map[string]any) (any, error) {
			return r.Query().Courses(ctx)
		},
		"course": func(ctx context.Context, r ResolverRoot, _ any, args map[string]any) (any, error) {
			id, err := argID(args, "id")
			if err != nil {
				return nil, err
			}
			return r.Query().Course(ctx, id)
		},
		"me": func(ctx context.Context, r ResolverRoot, _ any, _ map[string]any) (any, error) {
			return r.Query().Me(ctx)
		},
	},
	"Mutation": {
		"newUser": func(ctx context.Context, r ResolverRoot, _ any, args map[string]any) (any, error) {
			name, err := argString(args, "name")
			if err != nil {
				return nil, err
			}
			email, err := argString(args, "email")
			if err != nil {
				return nil, err
			}
			return r.Mutation().NewUser(ctx, name, email)
		},
		"deleteUser": func(ctx context.Context, r ResolverRoot, _ any, args map[string]any) (any, error) {
			id, err := argID(args, "id")
			if err != nil {
				return nil, err
			}
			return r.Mutation().DeleteUser(ctx, id)
		},
		"updateUser": func(ctx context.Context, r ResolverRoot, _ any, args map[string]any) (any, error) {
			id, err := argID(args, "id")
			if err != nil {
				return nil, err
			}
			in, err := unmarshalInputUpdateUserInput(args["updatedValue"])
			if err != nil {
				return nil, err
			}
			return r.Mutation().UpdateUser(ctx, id, in)
		},
		"newCourse": func(ctx context.Context, r ResolverRoot, _ any, args map[string]any) (any, error) {
			in, err := unmarshalInputNewCourseInput(args["input"])
			if err != nil {
				return nil, err
			}
			return r.Mutation().NewCourse(ctx, in)
		},
		"deleteCourse": func(ctx context.Context, r ResolverRoot, _ any, args map[string]any) (any, error) {
			id, err := argID(args, "id")
			if err != nil {
				return nil, err
			}
			return r.Mutation().DeleteCourse(ctx, id)
		},
	},
	"User": {
		"_id":       userField(func(u *entity.User) any { return u.ID }),
		"name":      userField(func(u *entity.User) any { return u.Name }),
		"email":     userField(func(u *entity.User) any { return u.Email }),
		"googleId":  userField(func(u *entity.User) any { return optional(u.GoogleID) }),
		"role":      userField(func(u *entity.User) any { return u.Role }),
		"avatar":    userField(func(u *entity.User) any { return u.Avatar }),
		"verified":  userField(func(u *entity.User) any { return u.Verified }),
		"createdAt": userField(func(u *entity.User) any { return formatTime(u.CreatedAt) }),
		"updatedAt": userField(func(u *entity.User) any { return formatTime(u.UpdatedAt) }),
		"courses": func(ctx context.Context, r ResolverRoot, obj any, _ map[string]any) (any, error) {
			return r.User().Courses(ctx, obj.(*entity.User))
		},
	},
	"Course": {
		"_id":         courseField(func(c *entity.Course) any { return c.ID }),
		"title":       courseField(func(c *entity.Course) any { return c.Title }),
		"description": courseField(func(c *entity.Course) any { return c.Description }),
		"instructor": func(ctx context.Context, r ResolverRoot, obj any, _ map[string]any) (any, error) {
			return r.Course().Instructor(ctx, obj.(*entity.Course))
		},
		"ratingsAverage":   courseField(func(c *entity.Course) any { return c.RatingsAverage }),
		"ratingsQuantity":  courseField(func(c *entity.Course) any { return c.RatingsQuantity }),
		"price":            courseField(func(c *entity.Course) any { return c.Price }),
		"category":         courseField(func(c *entity.Course) any { return c.Category }),
		"subCategory":      courseField(func(c *entity.Course) any { return c.SubCategory }),
		"level":            courseField(func(c *entity.Course) any { return c.Level }),
		"language":         courseField(func(c *entity.Course) any { return c.Language }),
		"whatYouWillLearn": courseField(func(c *entity.Course) any { return c.WhatYouWillLearn }),
		"requirements":     courseField(func(c *entity.Course) any { return c.Requirements }),
		"targetAudience":   courseField(func(c *entity.Course) any { return c.TargetAudience }),
		"isPublished":      courseField(func(c *entity.Course) any { return c.IsPublished }),
		"isFree":           courseField(func(c *entity.Course) any { return c.IsFree }),
		"isApproved":       courseField(func(c *entity.Course) any { return c.IsApproved }),
		"isRejected":       courseField(func(c *entity.Course) any { return c.IsRejected }),
		"isFeatured":       courseField(func(c *entity.Course) any { return c.IsFeatured }),
		"isTrending":       courseField(func(c *entity.Course) any { return c.IsTrending }),
		"isBestseller":     courseField(func(c *entity.Course) any { return c.IsBestseller }),
		"coverImage":       courseField(func(c *entity.Course) any { return c.CoverImage }),
		"previewVideo":     courseField(func(c *entity.Course) any { return c.PreviewVideo }),
		"students":         courseField(func(c *entity.Course) any { return c.Students }),
		"createdAt":        courseField(func(c *entity.Course) any { return formatTime(c.CreatedAt) }),
		"updatedAt":        courseField(func(c *entity.Course) any { return formatTime(c.UpdatedAt) }),
	},
}

func argID(args map[string]any, name string) (string, error) {
	id, err := graphql.UnmarshalID(args[name])
	if err != nil {
		return "", badArgument(name, err)
	}
	return id, nil
}

func argString(args map[string]any, name string) (string, error) {
	s, err := graphql.UnmarshalString(args[name])
	if err != nil {
		return "", badArgument(name, err)
	}
	return s, nil
}

func badArgument(name string, err error) error {
	return apperrors.NewValidationError(fmt.Sprintf("invalid argument %s: %v", name, err))
}

func inputMap(name string, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s: expected an input object, got %T", name, v))
	}
	return m, nil
}

func unmarshalInputUpdateUserInput(v any) (model.UpdateUserInput, error) {
	var it model.UpdateUserInput
	asMap, err := inputMap("UpdateUserInput", v)
	if err != nil {
		return it, err
	}

	if it.Name, err = optString(asMap, "name"); err != nil {
		return it, err
	}
	if it.Email, err = optString(asMap, "email"); err != nil {
		return it, err
	}
	return it, nil
}

func unmarshalInputNewCourseInput(v any) (model.NewCourseInput, error) {
	var it model.NewCourseInput
	asMap, err := inputMap("NewCourseInput", v)
	if err != nil {
		return it, err
	}

	if it.Title, err = argString(asMap, "title"); err != nil {
		return it, err
	}
	if it.Description, err = argString(asMap, "description"); err != nil {
		return it, err
	}
	if it.Instructor, err = argID(asMap, "instructor"); err != nil {
		return it, err
	}
	if it.Price, err = optInt(asMap, "price"); err != nil {
		return it, err
	}
	for field, dst := range map[string]**string{
		"category":     &it.Category,
		"subCategory":  &it.SubCategory,
		"level":        &it.Level,
		"language":     &it.Language,
		"coverImage":   &it.CoverImage,
		"previewVideo": &it.PreviewVideo,
	} {
		if *dst, err = optString(asMap, field); err != nil {
			return it, err
		}
	}
	for field, dst := range map[string]*[]string{
		"whatYouWillLearn": &it.WhatYouWillLearn,
		"requirements":     &it.Requirements,
		"targetAudience":   &it.TargetAudience,
	} {
		if *dst, err = optStrings(asMap, field); err != nil {
			return it, err
		}
	}
	if it.IsFree, err = optBool(asMap, "isFree"); err != nil {
		return it, err
	}
	if it.IsPublished, err = optBool(asMap, "isPublished"); err != nil {
		return it, err
	}
	return it, nil
}

func optString(m map[string]any, name string) (*string, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return nil, nil
	}
	s, err := graphql.UnmarshalString(v)
	if err != nil {
		return nil, badArgument(name, err)
	}
	return &s, nil
}

func optInt(m map[string]any, name string) (*int, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return nil, nil
	}
	n, err := graphql.UnmarshalInt(v)
	if err != nil {
		return nil, badArgument(name, err)
	}
	return &n, nil
}

func optBool(m map[string]any, name string) (*bool, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return nil, nil
	}
	b, err := graphql.UnmarshalBoolean(v)
	if err != nil {
		return nil, badArgument(name, err)
	}
	return &b, nil
}

func optStrings(m map[string]any, name string) ([]string, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		// A single value is coerced to a one-element list.
		items = []any{v}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := graphql.UnmarshalString(item)
		if err != nil {
			return nil, badArgument(name, err)
		}
		out = append(out, s)
	}
	return out, nil
}
