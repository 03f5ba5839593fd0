package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Token purposes
const (
	TokenPurposeEmailVerification = "email_verification"
	TokenPurposePasswordReset     = "password_reset"
)

// OneTimeTokenStore issues opaque single-use tokens bound to a user id.
// Only a digest of the token is stored.
type OneTimeTokenStore interface {
	Issue(ctx context.Context, purpose string, userID uint, ttl time.Duration) (string, error)
	// Consume returns the owner of token and invalidates it. ok is false for unknown or expired tokens.
	Consume(ctx context.Context, purpose, token string) (userID uint, ok bool, err error)
}

func newOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func tokenDigest(purpose, token string) string {
	sum := sha256.Sum256([]byte(purpose + ":" + token))
	return hex.EncodeToString(sum[:])
}

type RedisTokenStore struct {
	rc     *redis.Client
	prefix string
}

func NewRedisTokenStore(rc *redis.Client, prefix string) *RedisTokenStore {
	return &RedisTokenStore{rc: rc, prefix: prefix + ":ott:"}
}

func (s *RedisTokenStore) Issue(ctx context.Context, purpose string, userID uint, ttl time.Duration) (string, error) {
	token, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	if err := s.rc.Set(ctx, s.prefix+tokenDigest(purpose, token), userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Consume(ctx context.Context, purpose, token string) (uint, bool, error) {
	val, err := s.rc.GetDel(ctx, s.prefix+tokenDigest(purpose, token)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return uint(id), true, nil
}

type memoryToken struct {
	userID    uint
	expiresAt time.Time
}

// MemoryTokenStore keeps tokens in process; used when redis is not configured
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]memoryToken), now: time.Now}
}

func (s *MemoryTokenStore) Issue(_ context.Context, purpose string, userID uint, ttl time.Duration) (string, error) {
	token, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, v := range s.tokens {
		if now.After(v.expiresAt) {
			delete(s.tokens, k)
		}
	}
	s.tokens[tokenDigest(purpose, token)] = memoryToken{userID: userID, expiresAt: now.Add(ttl)}
	return token, nil
}

func (s *MemoryTokenStore) Consume(_ context.Context, purpose, token string) (uint, bool, error) {
	key := tokenDigest(purpose, token)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[key]
	if !ok {
		return 0, false, nil
	}
	delete(s.tokens, key)
	if s.now().After(t.expiresAt) {
		return 0, false, nil
	}
	return t.userID, true, nil
}
