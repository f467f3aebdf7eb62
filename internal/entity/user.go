package entity

import "time"

// DefaultRole is assigned to users created without an explicit role.
const DefaultRole = "user"

// RoleAdmin grants access to the API when the admin gate is enabled.
const RoleAdmin = "admin"

// User is a person who can sign in and instruct or attend courses.
type User struct {
	ID        string    `json:"_id" bson:"_id" yaml:"id,omitempty" gorm:"primaryKey"`
	Name      string    `json:"name" bson:"name" yaml:"name"`
	Email     string    `json:"email" bson:"email" yaml:"email" gorm:"index"`
	Password  string    `json:"-" bson:"password,omitempty" yaml:"password,omitempty"`
	GoogleID  string    `json:"googleId,omitempty" bson:"googleId,omitempty" yaml:"googleId,omitempty"`
	Role      string    `json:"role" bson:"role" yaml:"role,omitempty"`
	Avatar    string    `json:"avatar" bson:"avatar" yaml:"avatar,omitempty"`
	Verified  bool      `json:"verified" bson:"verified" yaml:"verified,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// NewUser returns a user with only name and email set and every other field at its default.
func NewUser(name, email string) *User {
	return &User{
		Name:  name,
		Email: email,
		Role:  DefaultRole,
	}
}

// RecordID implements Record.
func (u *User) RecordID() string { return u.ID }

// SetRecordID implements Record.
func (u *User) SetRecordID(id string) { u.ID = id }

// Touch implements Record.
func (u *User) Touch(now time.Time) { touch(&u.CreatedAt, &u.UpdatedAt, now) }

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// Lookup implements Record.
func (u *User) Lookup(field string) (any, bool) {
	switch field {
	case "_id":
		return u.ID, true
	case "name":
		return u.Name, true
	case "email":
		return u.Email, true
	case "password":
		return u.Password, true
	case "googleId":
		return u.GoogleID, true
	case "role":
		return u.Role, true
	case "avatar":
		return u.Avatar, true
	case "verified":
		return u.Verified, true
	case "createdAt":
		return u.CreatedAt, true
	case "updatedAt":
		return u.UpdatedAt, true
	}
	return nil, false
}

// Apply implements Record.
func (u *User) Apply(fields Fields) error {
	next := *u
	for field, v := range fields {
		var err error
		switch field {
		case "name":
			next.Name, err = asString(KindUser, field, v)
		case "email":
			next.Email, err = asString(KindUser, field, v)
		case "password":
			next.Password, err = asString(KindUser, field, v)
		case "googleId":
			next.GoogleID, err = asString(KindUser, field, v)
		case "role":
			next.Role, err = asString(KindUser, field, v)
		case "avatar":
			next.Avatar, err = asString(KindUser, field, v)
		case "verified":
			next.Verified, err = asBool(KindUser, field, v)
		default:
			return &UnknownFieldError{Kind: KindUser, Field: field}
		}
		if err != nil {
			return err
		}
	}
	*u = next
	return nil
}
