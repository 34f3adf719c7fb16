package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndParseSessionToken(t *testing.T) {
	key := DeriveKey("test-secret")
	issued, err := IssueSessionToken(key, SessionClaims{
		Email:   "reviewer@example.com",
		Name:    "Reviewer",
		Actions: []string{"view", "edit"},
		Exp:     time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	claims, err := ParseSessionToken(key, issued)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}
	if claims.Email != "reviewer@example.com" || claims.Name != "Reviewer" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(claims.Actions) != 2 {
		t.Fatalf("unexpected actions: %v", claims.Actions)
	}
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	key := DeriveKey("test-secret")
	issued, err := IssueSessionToken(key, SessionClaims{
		Email: "reviewer@example.com",
		Exp:   time.Now().Add(-time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	_, err = ParseSessionToken(key, issued)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseSessionTokenRejectsTampering(t *testing.T) {
	key := DeriveKey("test-secret")
	issued, err := IssueSessionToken(key, SessionClaims{
		Email: "reviewer@example.com",
		Exp:   time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	parts := strings.Split(issued, ".")
	tampered := parts[0] + "x." + parts[1]
	if _, err := ParseSessionToken(key, tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered payload, got %v", err)
	}

	otherKey := DeriveKey("other-secret")
	if _, err := ParseSessionToken(otherKey, issued); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestParseApprovalTokenRoundTrip(t *testing.T) {
	key := DeriveKey("test-secret")
	issued, err := IssueApprovalToken(key, ApprovalClaims{
		ReviewID:      7,
		ApproverEmail: "legal@example.com",
		Exp:           time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueApprovalToken() error = %v", err)
	}
	claims, err := ParseApprovalToken(key, issued)
	if err != nil {
		t.Fatalf("ParseApprovalToken() error = %v", err)
	}
	if claims.ReviewID != 7 || claims.ApproverEmail != "legal@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseApprovalTokenRejectsSessionToken(t *testing.T) {
	key := DeriveKey("test-secret")
	issued, err := IssueSessionToken(key, SessionClaims{
		Email: "reviewer@example.com",
		Exp:   time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	if _, err := ParseApprovalToken(key, issued); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("a session token must not open reviews, got %v", err)
	}
}

func TestParseSessionTokenRejectsGarbage(t *testing.T) {
	key := DeriveKey("test-secret")
	for _, token := range []string{"", "a", "a.b.c", "!!!.???"} {
		if _, err := ParseSessionToken(key, token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
