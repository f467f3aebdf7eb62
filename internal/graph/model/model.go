// Package model holds the GraphQL input types.
package model

// UpdateUserInput carries the fields updateUser may change. A nil field is left untouched.
type UpdateUserInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// NewCourseInput carries the fields of a course created through newCourse.
type NewCourseInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Instructor       string   `json:"instructor"`
	Price            *int     `json:"price,omitempty"`
	Category         *string  `json:"category,omitempty"`
	SubCategory      *string  `json:"subCategory,omitempty"`
	Level            *string  `json:"level,omitempty"`
	Language         *string  `json:"language,omitempty"`
	WhatYouWillLearn []string `json:"whatYouWillLearn,omitempty"`
	Requirements     []string `json:"requirements,omitempty"`
	TargetAudience   []string `json:"targetAudience,omitempty"`
	IsFree           *bool    `json:"isFree,omitempty"`
	IsPublished      *bool    `json:"isPublished,omitempty"`
	CoverImage       *string  `json:"coverImage,omitempty"`
	PreviewVideo     *string  `json:"previewVideo,omitempty"`
}
