// Package directory looks up user profiles in the corporate directory API,
// with a short Redis cache in front so bursts of lookups during a review
// round do not hammer the upstream.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// User is a directory profile. Actions carries the raw permission names as
// the upstream reports them; rbac normalization happens at the boundary.
type User struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
}

type Service struct {
	baseURL string
	client  *http.Client
	cache   *redis.Client
	ttl     time.Duration
}

// NewService builds a directory client. cache may be nil, in which case every
// lookup goes upstream.
func NewService(baseURL string, cache *redis.Client, ttl time.Duration) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   cache,
		ttl:     ttl,
	}
}

func (s *Service) IsConfigured() bool {
	return s.baseURL != ""
}

func cacheKey(email string) string {
	return "directory:user:" + strings.ToLower(strings.TrimSpace(email))
}

// Lookup fetches a profile by email, serving from cache when fresh. Cache
// errors are ignored; only an upstream failure surfaces.
func (s *Service) Lookup(ctx context.Context, email string) (User, error) {
	if !s.IsConfigured() {
		return User{}, fmt.Errorf("directory not configured")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey(email)).Result()
		if err == nil {
			var user User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return user, nil
			}
		}
	}

	endpoint := s.baseURL + "/users?email=" + url.QueryEscape(strings.TrimSpace(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return User{}, fmt.Errorf("build directory request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("directory lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("directory lookup: status %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, fmt.Errorf("decode directory response: %w", err)
	}
	if user.Email == "" {
		user.Email = strings.TrimSpace(email)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(user); err == nil {
			_ = s.cache.Set(ctx, cacheKey(email), payload, s.ttl).Err()
		}
	}
	return user, nil
}

// ResolveName returns the display name for an email, falling back to the
// email itself when the directory is unavailable or has no record.
func (s *Service) ResolveName(ctx context.Context, email string) string {
	user, err := s.Lookup(ctx, email)
	if err != nil || strings.TrimSpace(user.Name) == "" {
		return strings.TrimSpace(email)
	}
	return user.Name
}
