// Package anonymous issues bearer tokens that identify a guest cart session.
package anonymous

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultTTL = 3 * time.Hour

type Service struct {
	tokens *tokenManager
	ttl    time.Duration
}

func New(ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{tokens: newTokenManager(time.Now), ttl: ttl}
}

// Issue starts a new session and returns its token and id.
func (s *Service) Issue(_ context.Context) (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	token, err = s.tokens.Issue(sessionID, s.ttl)
	if err != nil {
		return "", "", err
	}
	return token, sessionID, nil
}

// LookupByToken returns the session id for a live token.
func (s *Service) LookupByToken(_ context.Context, token string) (string, error) {
	meta, ok := s.tokens.Validate(token)
	if !ok {
		return "", ErrInvalidToken
	}
	return meta.SessionID, nil
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
