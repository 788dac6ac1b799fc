package model

import (
	"errors"
	"strings"
	"testing"
)

func TestRegisterInputValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        RegisterInput
		badFields []string
	}{
		{"valid", RegisterInput{"alice", "a@x.com", "pw123x"}, nil},
		{"trimmed", RegisterInput{"  alice ", " a@x.com ", "pw123x"}, nil},
		{"short username", RegisterInput{"ab", "a@x.com", "pw123x"}, []string{"username"}},
		{"long username", RegisterInput{strings.Repeat("a", 33), "a@x.com", "pw123x"}, []string{"username"}},
		{"username with spaces", RegisterInput{"al ice", "a@x.com", "pw123x"}, []string{"username"}},
		{"malformed email", RegisterInput{"alice", "not-an-email", "pw123x"}, []string{"email"}},
		{"five character password", RegisterInput{"alice", "a@x.com", "pw123"}, nil},
		{"short password", RegisterInput{"alice", "a@x.com", "pw12"}, []string{"password"}},
		{"everything missing", RegisterInput{}, []string{"username", "email", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := tt.in.Validate()
			if len(tt.badFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if reg.Username != "alice" || reg.Email != "a@x.com" {
					t.Errorf("expected trimmed values, got %+v", reg)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tt.badFields) {
				t.Errorf("expected %d bad fields, got %v", len(tt.badFields), verr.Fields)
			}
			for _, f := range tt.badFields {
				if _, ok := verr.Fields[f]; !ok {
					t.Errorf("expected field %q to be reported, got %v", f, verr.Fields)
				}
			}
		})
	}
}

func TestLoginInputValidate(t *testing.T) {
	if _, err := (LoginInput{Username: "alice", Password: "pw"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	_, err := LoginInput{Username: "  ", Password: ""}.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["username"] != "is required" || verr.Fields["password"] != "is required" {
		t.Errorf("unexpected fields: %v", verr.Fields)
	}
}

func TestItemInputValidate(t *testing.T) {
	fields, err := ItemInput{Title: "  Buy milk ", Description: "   "}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Title != "Buy milk" {
		t.Errorf("expected trimmed title, got %q", fields.Title)
	}
	if fields.Description != "" {
		t.Errorf("expected blank description to be dropped, got %q", fields.Description)
	}

	tests := []struct {
		name  string
		in    ItemInput
		field string
	}{
		{"missing title", ItemInput{Title: "   "}, "title"},
		{"long title", ItemInput{Title: strings.Repeat("x", 201)}, "title"},
		{"long description", ItemInput{Title: "ok", Description: strings.Repeat("x", 2001)}, "description"},
	}
	for _, tt := range tests {
		_, err := tt.in.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tt.name, err)
			continue
		}
		if _, ok := verr.Fields[tt.field]; !ok {
			t.Errorf("%s: expected %q in %v", tt.name, tt.field, verr.Fields)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"title": "is required",
		"email": "must be a valid email address",
	}}
	want := "validation failed: email must be a valid email address; title is required"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
