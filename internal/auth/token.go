package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

type SessionClaims struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
	Exp     int64    `json:"exp"`
}

// ApprovalClaims is a capability: the bearer may open one review version as
// the named approver. The decision endpoint still checks session identity.
type ApprovalClaims struct {
	ReviewID      int64  `json:"review_id"`
	ApproverEmail string `json:"approver_email"`
	Exp           int64  `json:"exp"`
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// DeriveKey stretches the configured secret into a signing key. PBKDF2 with
// SHA-256 and 100k iterations matches what the key was provisioned against.
func DeriveKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), []byte("lexrev-signing"), 100_000, 32, sha256.New)
}

func IssueSessionToken(key []byte, claims SessionClaims) (string, error) {
	return issue(key, claims)
}

func ParseSessionToken(key []byte, token string) (SessionClaims, error) {
	var claims SessionClaims
	if err := parse(key, token, &claims); err != nil {
		return SessionClaims{}, err
	}
	if claims.Email == "" || claims.Exp == 0 {
		return SessionClaims{}, ErrInvalidToken
	}
	if time.Now().Unix() >= claims.Exp {
		return SessionClaims{}, ErrExpiredToken
	}
	return claims, nil
}

func IssueApprovalToken(key []byte, claims ApprovalClaims) (string, error) {
	return issue(key, claims)
}

func ParseApprovalToken(key []byte, token string) (ApprovalClaims, error) {
	var claims ApprovalClaims
	if err := parse(key, token, &claims); err != nil {
		return ApprovalClaims{}, err
	}
	if claims.ReviewID == 0 || claims.ApproverEmail == "" || claims.Exp == 0 {
		return ApprovalClaims{}, ErrInvalidToken
	}
	if time.Now().Unix() >= claims.Exp {
		return ApprovalClaims{}, ErrExpiredToken
	}
	return claims, nil
}

func issue(key []byte, claims any) (string, error) {
	payloadBytes, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(payloadBytes)
	return payload + "." + sign(key, payload), nil
}

func parse(key []byte, token string, claims any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return ErrInvalidToken
	}
	payload := parts[0]
	signature := parts[1]

	expected := sign(key, payload)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidToken
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalidToken
	}
	if err := json.Unmarshal(decoded, claims); err != nil {
		return ErrInvalidToken
	}
	return nil
}

func sign(key []byte, payload string) string {
	sum := hmac.New(sha256.New, key)
	_, _ = sum.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(sum.Sum(nil))
}
