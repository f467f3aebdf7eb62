package entity

import "time"

// Course is a published (or draft) course taught by one instructor.
//
// Instructor holds the id of a User. Nothing in this package keeps the reference
// valid; deleting the user leaves the course pointing at a missing record.
type Course struct {
	ID               string    `json:"_id" bson:"_id" yaml:"id,omitempty" gorm:"primaryKey"`
	Title            string    `json:"title" bson:"title" yaml:"title"`
	Description      string    `json:"description" bson:"description" yaml:"description"`
	Instructor       string    `json:"instructor" bson:"instructor" yaml:"instructor,omitempty" gorm:"index"`
	RatingsAverage   int       `json:"ratingsAverage" bson:"ratingsAverage" yaml:"ratingsAverage,omitempty"`
	RatingsQuantity  int       `json:"ratingsQuantity" bson:"ratingsQuantity" yaml:"ratingsQuantity,omitempty"`
	Price            int       `json:"price" bson:"price" yaml:"price"`
	Category         string    `json:"category" bson:"category" yaml:"category"`
	SubCategory      string    `json:"subCategory" bson:"subCategory" yaml:"subCategory"`
	Level            string    `json:"level" bson:"level" yaml:"level"`
	Language         string    `json:"language" bson:"language" yaml:"language"`
	WhatYouWillLearn []string  `json:"whatYouWillLearn" bson:"whatYouWillLearn" yaml:"whatYouWillLearn" gorm:"serializer:json"`
	Requirements     []string  `json:"requirements" bson:"requirements" yaml:"requirements" gorm:"serializer:json"`
	TargetAudience   []string  `json:"targetAudience" bson:"targetAudience" yaml:"targetAudience" gorm:"serializer:json"`
	IsPublished      bool      `json:"isPublished" bson:"isPublished" yaml:"isPublished,omitempty"`
	IsFree           bool      `json:"isFree" bson:"isFree" yaml:"isFree,omitempty"`
	IsApproved       bool      `json:"isApproved" bson:"isApproved" yaml:"isApproved,omitempty"`
	IsRejected       bool      `json:"isRejected" bson:"isRejected" yaml:"isRejected,omitempty"`
	IsFeatured       bool      `json:"isFeatured" bson:"isFeatured" yaml:"isFeatured,omitempty"`
	IsTrending       bool      `json:"isTrending" bson:"isTrending" yaml:"isTrending,omitempty"`
	IsBestseller     bool      `json:"isBestseller" bson:"isBestseller" yaml:"isBestseller,omitempty"`
	CoverImage       string    `json:"coverImage" bson:"coverImage" yaml:"coverImage"`
	PreviewVideo     string    `json:"previewVideo" bson:"previewVideo" yaml:"previewVideo"`
	Students         []string  `json:"students" bson:"students" yaml:"students,omitempty" gorm:"serializer:json"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// RecordID implements Record.
func (c *Course) RecordID() string { return c.ID }

// SetRecordID implements Record.
func (c *Course) SetRecordID(id string) { c.ID = id }

// Touch implements Record. It also replaces nil lists with empty ones so the
// list fields are never null once stored.
func (c *Course) Touch(now time.Time) {
	touch(&c.CreatedAt, &c.UpdatedAt, now)
	c.WhatYouWillLearn = cloneStrings(c.WhatYouWillLearn)
	c.Requirements = cloneStrings(c.Requirements)
	c.TargetAudience = cloneStrings(c.TargetAudience)
	c.Students = cloneStrings(c.Students)
}

// Clone returns a deep copy of the course.
func (c *Course) Clone() *Course {
	out := *c
	out.WhatYouWillLearn = cloneStrings(c.WhatYouWillLearn)
	out.Requirements = cloneStrings(c.Requirements)
	out.TargetAudience = cloneStrings(c.TargetAudience)
	out.Students = cloneStrings(c.Students)
	return &out
}

// Lookup implements Record.
func (c *Course) Lookup(field string) (any, bool) {
	switch field {
	case "_id":
		return c.ID, true
	case "title":
		return c.Title, true
	case "description":
		return c.Description, true
	case "instructor":
		return c.Instructor, true
	case "ratingsAverage":
		return c.RatingsAverage, true
	case "ratingsQuantity":
		return c.RatingsQuantity, true
	case "price":
		return c.Price, true
	case "category":
		return c.Category, true
	case "subCategory":
		return c.SubCategory, true
	case "level":
		return c.Level, true
	case "language":
		return c.Language, true
	case "whatYouWillLearn":
		return c.WhatYouWillLearn, true
	case "requirements":
		return c.Requirements, true
	case "targetAudience":
		return c.TargetAudience, true
	case "isPublished":
		return c.IsPublished, true
	case "isFree":
		return c.IsFree, true
	case "isApproved":
		return c.IsApproved, true
	case "isRejected":
		return c.IsRejected, true
	case "isFeatured":
		return c.IsFeatured, true
	case "isTrending":
		return c.IsTrending, true
	case "isBestseller":
		return c.IsBestseller, true
	case "coverImage":
		return c.CoverImage, true
	case "previewVideo":
		return c.PreviewVideo, true
	case "students":
		return c.Students, true
	case "createdAt":
		return c.CreatedAt, true
	case "updatedAt":
		return c.UpdatedAt, true
	}
	return nil, false
}

// Apply implements Record.
func (c *Course) Apply(fields Fields) error {
	next := c.Clone()
	for field, v := range fields {
		var err error
		switch field {
		case "title":
			next.Title, err = asString(KindCourse, field, v)
		case "description":
			next.Description, err = asString(KindCourse, field, v)
		case "instructor":
			next.Instructor, err = asString(KindCourse, field, v)
		case "ratingsAverage":
			next.RatingsAverage, err = asInt(KindCourse, field, v)
		case "ratingsQuantity":
			next.RatingsQuantity, err = asInt(KindCourse, field, v)
		case "price":
			next.Price, err = asInt(KindCourse, field, v)
		case "category":
			next.Category, err = asString(KindCourse, field, v)
		case "subCategory":
			next.SubCategory, err = asString(KindCourse, field, v)
		case "level":
			next.Level, err = asString(KindCourse, field, v)
		case "language":
			next.Language, err = asString(KindCourse, field, v)
		case "whatYouWillLearn":
			next.WhatYouWillLearn, err = asStrings(KindCourse, field, v)
		case "requirements":
			next.Requirements, err = asStrings(KindCourse, field, v)
		case "targetAudience":
			next.TargetAudience, err = asStrings(KindCourse, field, v)
		case "isPublished":
			next.IsPublished, err = asBool(KindCourse, field, v)
		case "isFree":
			next.IsFree, err = asBool(KindCourse, field, v)
		case "isApproved":
			next.IsApproved, err = asBool(KindCourse, field, v)
		case "isRejected":
			next.IsRejected, err = asBool(KindCourse, field, v)
		case "isFeatured":
			next.IsFeatured, err = asBool(KindCourse, field, v)
		case "isTrending":
			next.IsTrending, err = asBool(KindCourse, field, v)
		case "isBestseller":
			next.IsBestseller, err = asBool(KindCourse, field, v)
		case "coverImage":
			next.CoverImage, err = asString(KindCourse, field, v)
		case "previewVideo":
			next.PreviewVideo, err = asString(KindCourse, field, v)
		case "students":
			next.Students, err = asStrings(KindCourse, field, v)
		default:
			return &UnknownFieldError{Kind: KindCourse, Field: field}
		}
		if err != nil {
			return err
		}
	}
	*c = *next
	return nil
}
