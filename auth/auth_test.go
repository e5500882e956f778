// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/society-live/models"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("test-secret", "society-live")

	tests := []struct {
		name      string
		userID    string
		role      string
		wantRole  string
		wantAdmin bool
	}{
		{"member", "user-1", models.RoleMember, models.RoleMember, false},
		{"admin", "user-2", models.RoleAdmin, models.RoleAdmin, true},
		{"empty role defaults to member", "user-3", "", models.RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := v.Issue(tt.userID, tt.role, time.Hour)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}

			id, err := v.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if id.UserID != tt.userID {
				t.Errorf("UserID = %q, want %q", id.UserID, tt.userID)
			}
			if id.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", id.Role, tt.wantRole)
			}
			if id.IsAdmin() != tt.wantAdmin {
				t.Errorf("IsAdmin() = %v, want %v", id.IsAdmin(), tt.wantAdmin)
			}
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("test-secret", "society-live")

	expired, _ := v.Issue("user-1", models.RoleMember, -time.Minute)
	otherSecret, _ := NewVerifier("other-secret", "society-live").Issue("user-1", models.RoleMember, time.Hour)
	otherIssuer, _ := NewVerifier("test-secret", "someone-else").Issue("user-1", models.RoleMember, time.Hour)
	noSubject, _ := v.Issue("", models.RoleMember, time.Hour)

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: "society-live"},
	}).SignedString([]byte("test-secret"))

	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "society-live",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"wrong secret", otherSecret, ErrInvalidToken},
		{"wrong issuer", otherIssuer, ErrInvalidToken},
		{"missing subject", noSubject, ErrInvalidToken},
		{"missing expiry", noExpiry, ErrInvalidToken},
		{"wrong algorithm", wrongAlg, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc", "abc", false},
		{"  Bearer   abc  ", "abc", false},
		{"", "", true},
		{"Bearer", "", true},
		{"Bearer ", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Errorf("BearerToken(%q) expected error, got %q", tt.header, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("BearerToken(%q) error = %v", tt.header, err)
			}
			if got != tt.want {
				t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
