package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// SubmissionTokens hands out one-time form tokens. A token is consumed when
// a submission starts, so a second submission of the same form is refused
// while the first is in flight or after it succeeded.
type SubmissionTokens struct {
	mu     sync.Mutex
	issued *gocache.Cache
}

// NewSubmissionTokens creates a token store whose unused tokens expire after ttl.
func NewSubmissionTokens(ttl time.Duration) *SubmissionTokens {
	return &SubmissionTokens{issued: gocache.New(ttl, ttl)}
}

// Issue returns a fresh token.
func (t *SubmissionTokens) Issue() string {
	token := uuid.NewString()
	t.issued.SetDefault(token, struct{}{})
	return token
}

// Consume reports whether token was issued and not yet used, and marks it used.
func (t *SubmissionTokens) Consume(token string) bool {
	if token == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.issued.Get(token); !ok {
		return false
	}
	t.issued.Delete(token)
	return true
}
