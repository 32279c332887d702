// Package session keeps anonymous visitor state in Redis, keyed by an opaque
// id carried in a cookie.
package session

import (
	"encoding/json"
	"fmt"
)

// Session is one visitor's key/value state. Values are held JSON-encoded so
// a session loaded from Redis can be written back without knowing its types.
type Session struct {
	ID       string
	values   map[string]json.RawMessage
	modified bool
	isNew    bool
}

func newSession(id string) *Session {
	return &Session{ID: id, values: make(map[string]json.RawMessage), isNew: true}
}

// IsNew reports whether the session has not been stored yet, so the client
// does not know its id.
func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) Modified() bool {
	return s.modified
}

// Get decodes the value stored under key into dst. It reports false when the
// key is absent.
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode session key %q: %w", key, err)
	}
	return true, nil
}

func (s *Session) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode session key %q: %w", key, err)
	}
	s.values[key] = raw
	s.modified = true
	return nil
}

func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.modified = true
}

func (s *Session) Len() int {
	return len(s.values)
}
