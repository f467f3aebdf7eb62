package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hmans/coursegraph/internal/entity"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewService("secret", "coursegraph", time.Hour)

	token, err := svc.Issue("u1", "admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	v, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if v.UserID != "u1" || v.Role != "admin" {
		t.Errorf("Parse() = %+v, want u1/admin", v)
	}
	if !v.IsAdmin() {
		t.Error("IsAdmin() = false, want true")
	}
}

func TestParseRejects(t *testing.T) {
	svc := NewService("secret", "coursegraph", time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService("other", "coursegraph", time.Hour)
		token, _ := other.Issue("u1", "user")
		if _, err := svc.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewService("secret", "someone-else", time.Hour)
		token, _ := other.Issue("u1", "user")
		if _, err := svc.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		old := NewService("secret", "coursegraph", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _ := old.Issue("u1", "user")
		if _, err := svc.Parse(token); !errors.Is(err, ErrExpiredToken) {
			t.Errorf("Parse() error = %v, want ErrExpiredToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := svc.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("no secret", func(t *testing.T) {
		empty := NewService("", "coursegraph", time.Hour)
		if _, err := empty.Issue("u1", "user"); !errors.Is(err, ErrNoSecret) {
			t.Errorf("Issue() error = %v, want ErrNoSecret", err)
		}
		if _, err := empty.Parse("x"); !errors.Is(err, ErrNoSecret) {
			t.Errorf("Parse() error = %v, want ErrNoSecret", err)
		}
	})
}

func TestViewerContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := ViewerFrom(ctx); ok {
		t.Error("ViewerFrom(empty ctx) ok = true")
	}

	ctx = WithViewer(ctx, Viewer{UserID: "u1", Role: "user"})
	v, ok := ViewerFrom(ctx)
	if !ok || v.UserID != "u1" {
		t.Errorf("ViewerFrom() = %+v, %v", v, ok)
	}
	if v.IsAdmin() {
		t.Error("IsAdmin() = true for role user")
	}
}

func TestIsAdmin(t *testing.T) {
	tests := map[string]bool{
		entity.RoleAdmin:   true,
		entity.DefaultRole: false,
		"Admin":            false,
		"":                 false,
	}
	for role, want := range tests {
		if got := (Viewer{Role: role}).IsAdmin(); got != want {
			t.Errorf("IsAdmin() for role %q = %v, want %v", role, got, want)
		}
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc", "abc", false},
		{"  Bearer   abc  ", "abc", false},
		{"Basic abc", "", true},
		{"Bearer", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractBearerToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
