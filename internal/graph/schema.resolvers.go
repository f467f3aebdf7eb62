package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hmans/coursegraph/internal/apperrors"
	"github.com/hmans/coursegraph/internal/auth"
	"github.com/hmans/coursegraph/internal/entity"
	"github.com/hmans/coursegraph/internal/events"
	"github.com/hmans/coursegraph/internal/graph/model"
	"github.com/hmans/coursegraph/internal/store"
)

// Instructor is the resolver for the instructor field.
func (r *courseResolver) Instructor(ctx context.Context, obj *entity.Course) (*entity.User, error) {
	if obj.Instructor == "" {
		return nil, nil
	}
	return r.findUser(ctx, obj.Instructor)
}

// NewUser is the resolver for the newUser field.
func (r *mutationResolver) NewUser(ctx context.Context, name string, email string) (*entity.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, apperrors.NewValidationError("name and email must not be empty")
	}

	u, err := r.Store.Users().Create(ctx, entity.NewUser(name, email))
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	r.publish(ctx, events.UserCreated, u.ID)
	return u, nil
}

// DeleteUser is the resolver for the deleteUser field.
func (r *mutationResolver) DeleteUser(ctx context.Context, id string) ([]*entity.User, error) {
	if _, err := r.Store.Users().DeleteByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("deleting user: %w", err)
	}
	r.publish(ctx, events.UserDeleted, id)

	users, err := r.Store.Users().Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// UpdateUser is the resolver for the updateUser field.
func (r *mutationResolver) UpdateUser(ctx context.Context, id string, updatedValue model.UpdateUserInput) (*entity.User, error) {
	// Only non-empty values are applied, and they are stored as given.
	fields := entity.Fields{}
	if updatedValue.Name != nil && *updatedValue.Name != "" {
		fields["name"] = *updatedValue.Name
	}
	if updatedValue.Email != nil && *updatedValue.Email != "" {
		fields["email"] = *updatedValue.Email
	}
	if len(fields) == 0 {
		return nil, apperrors.NewValidationError("at least one field (name or email) must be provided")
	}

	u, err := r.Store.Users().UpdateByID(ctx, id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	r.publish(ctx, events.UserUpdated, u.ID)
	return u, nil
}

// NewCourse is the resolver for the newCourse field.
func (r *mutationResolver) NewCourse(ctx context.Context, input model.NewCourseInput) (*entity.Course, error) {
	c, err := courseFromInput(input)
	if err != nil {
		return nil, err
	}

	instructor, err := r.findUser(ctx, c.Instructor)
	if err != nil {
		return nil, err
	}
	if instructor == nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("instructor %q does not exist", c.Instructor))
	}

	created, err := r.Store.Courses().Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("creating course: %w", err)
	}
	r.publish(ctx, events.CourseCreated, created.ID)
	return created, nil
}

// DeleteCourse is the resolver for the deleteCourse field.
func (r *mutationResolver) DeleteCourse(ctx context.Context, id string) (*entity.Course, error) {
	c, err := r.Store.Courses().DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("deleting course: %w", err)
	}
	r.publish(ctx, events.CourseDeleted, c.ID)
	return c, nil
}

// Hello is the resolver for the hello field.
func (r *queryResolver) Hello(ctx context.Context) (*string, error) {
	s := "Hello, World!"
	return &s, nil
}

// Users is the resolver for the users field.
func (r *queryResolver) Users(ctx context.Context) ([]*entity.User, error) {
	users, err := r.Store.Users().Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// User is the resolver for the user field.
func (r *queryResolver) User(ctx context.Context, id string) (*entity.User, error) {
	return r.findUser(ctx, id)
}

// Courses is the resolver for the courses field.
func (r *queryResolver) Courses(ctx context.Context) ([]*entity.Course, error) {
	courses, err := r.Store.Courses().Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

// Course is the resolver for the course field.
func (r *queryResolver) Course(ctx context.Context, id string) (*entity.Course, error) {
	c, err := r.Store.Courses().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding course: %w", err)
	}
	return c, nil
}

// Me is the resolver for the me field.
func (r *queryResolver) Me(ctx context.Context) (*entity.User, error) {
	viewer, ok := auth.ViewerFrom(ctx)
	if !ok {
		return nil, nil
	}
	return r.findUser(ctx, viewer.UserID)
}

// Courses is the resolver for the courses field.
func (r *userResolver) Courses(ctx context.Context, obj *entity.User) ([]*entity.Course, error) {
	courses, err := r.Store.Courses().Find(ctx, store.Eq("instructor", obj.ID))
	if err != nil {
		return nil, fmt.Errorf("listing courses of %s: %w", obj.ID, err)
	}
	return courses, nil
}

// Course returns CourseResolver implementation.
func (r *Resolver) Course() CourseResolver { return &courseResolver{r} }

// Mutation returns MutationResolver implementation.
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

// Query returns QueryResolver implementation.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

// User returns UserResolver implementation.
func (r *Resolver) User() UserResolver { return &userResolver{r} }

type courseResolver struct{ *Resolver }
type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type userResolver struct{ *Resolver }

// findUser is a point lookup that maps a miss to nil.
func (r *Resolver) findUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := r.Store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return u, nil
}

func courseFromInput(in model.NewCourseInput) (*entity.Course, error) {
	c := &entity.Course{
		Title:            in.Title,
		Description:      in.Description,
		Instructor:       in.Instructor,
		WhatYouWillLearn: in.WhatYouWillLearn,
		Requirements:     in.Requirements,
		TargetAudience:   in.TargetAudience,
	}
	switch {
	case strings.TrimSpace(c.Title) == "":
		return nil, apperrors.NewValidationError("title must not be empty")
	case strings.TrimSpace(c.Description) == "":
		return nil, apperrors.NewValidationError("description must not be empty")
	case strings.TrimSpace(c.Instructor) == "":
		return nil, apperrors.NewValidationError("instructor must not be empty")
	}

	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperrors.NewValidationError("price must not be negative")
		}
		c.Price = *in.Price
	}
	setString(&c.Category, in.Category)
	setString(&c.SubCategory, in.SubCategory)
	setString(&c.Level, in.Level)
	setString(&c.Language, in.Language)
	setString(&c.CoverImage, in.CoverImage)
	setString(&c.PreviewVideo, in.PreviewVideo)
	if in.IsFree != nil {
		c.IsFree = *in.IsFree
	}
	if in.IsPublished != nil {
		c.IsPublished = *in.IsPublished
	}
	return c, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
