package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	SessionTTL    = 24 * time.Hour
	SessionCookie = "session_id"
)

// Session is the server-side record an opaque cookie token resolves to.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Sessions is the session manager: create at login, read per request,
// delete at logout. Get returns (nil, nil) for unknown or expired tokens.
type Sessions interface {
	Create(ctx context.Context, sess Session) (string, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// RedisSessions stores session records in Redis with a TTL.
type RedisSessions struct {
	rdb *redis.Client
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

// Create stores a new session under a fresh opaque token.
func (s *RedisSessions) Create(ctx context.Context, sess Session) (string, error) {
	token := uuid.New().String()
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, "session:"+token, data, SessionTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get returns the session for a token, or nil if not found / expired.
func (s *RedisSessions) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.rdb.Get(ctx, "session:"+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Delete removes a session. Deleting a token that no longer exists is not an
// error.
func (s *RedisSessions) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, "session:"+token).Err()
}
