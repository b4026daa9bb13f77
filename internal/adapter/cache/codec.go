// Package cache holds what the conversation state cache adapters share: the
// wire encoding of a state record and its logical expiry rules.
//
// A record lives physically for ttl+grace. Past ExpiresAt but inside the
// grace window it is still returned, together with domain.ErrStateExpired,
// so the engine can tell an expired flow from a user who never started one.
package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/heartmarshall/taskbot/internal/domain"
)

// KeyPrefix namespaces conversation records in shared caches.
const KeyPrefix = "taskbot:conv:"

// Key returns the cache key for a user's conversation state.
func Key(userID int64) string {
	return KeyPrefix + strconv.FormatInt(userID, 10)
}

// Encode serializes a state record.
func Encode(s domain.ConversationState) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode conversation state: %w", err)
	}
	return b, nil
}

// Decode parses a state record produced by Encode.
func Decode(b []byte) (*domain.ConversationState, error) {
	var s domain.ConversationState
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode conversation state: %w", err)
	}
	return &s, nil
}

// Stamp sets the logical expiry of s to now+ttl. A non-positive ttl leaves
// the record without a logical expiry.
func Stamp(s domain.ConversationState, now time.Time, ttl time.Duration) domain.ConversationState {
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	} else {
		s.ExpiresAt = time.Time{}
	}
	return s
}

// Check returns s unchanged, with domain.ErrStateExpired when s is past its
// logical expiry.
func Check(s *domain.ConversationState, now time.Time, userID int64) (*domain.ConversationState, error) {
	if s != nil && s.IsExpired(now) {
		return s, fmt.Errorf("conversation %d: %w", userID, domain.ErrStateExpired)
	}
	return s, nil
}
