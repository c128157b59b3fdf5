package core

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/stream/internal/model"
)

// FeedKeyMetaKey is the fixed attribute name the feed key is stored under.
const FeedKeyMetaKey = "stream_user_feed_key"

const feedKeyLength = 32

// URL-safe characters only, so keys survive unencoded in query strings.
const feedKeyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._~"

// GenerateFeedKey returns a fresh 32-character feed key drawn from
// crypto/rand. Selection is unbiased: bytes outside the largest multiple
// of the alphabet size are discarded.
func GenerateFeedKey() (string, error) {
	const limit = byte(len(feedKeyAlphabet) * (256 / len(feedKeyAlphabet)))

	key := make([]byte, 0, feedKeyLength)
	buf := make([]byte, feedKeyLength)
	for len(key) < feedKeyLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate feed key: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			key = append(key, feedKeyAlphabet[int(b)%len(feedKeyAlphabet)])
			if len(key) == feedKeyLength {
				break
			}
		}
	}
	return string(key), nil
}

// FeedKeyService manages per-user feed keys stored as a user_meta attribute.
type FeedKeyService struct {
	db DB
}

// NewFeedKeyService creates a new FeedKeyService.
func NewFeedKeyService(db DB) *FeedKeyService {
	return &FeedKeyService{db: db}
}

// Get fetches the stored key for a user. Returns "" if the user never had
// a key generated.
func (s *FeedKeyService) Get(ctx context.Context, userID string) (string, error) {
	var key string
	err := s.db.QueryRow(ctx,
		`SELECT meta_value FROM user_meta WHERE user_id = $1 AND meta_key = $2`,
		userID, FeedKeyMetaKey,
	).Scan(&key)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get feed key for user %s: %w", userID, err)
	}
	return key, nil
}

// Set overwrites (or creates) the stored key for a user. A unique index on
// (meta_key, meta_value) rejects a key already held by another user; the
// violation is surfaced so callers can retry generation.
func (s *FeedKeyService) Set(ctx context.Context, userID, key string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO user_meta (user_id, meta_key, meta_value) VALUES ($1, $2, $3)
         ON CONFLICT (user_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`,
		userID, FeedKeyMetaKey, key,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("set feed key for user %s: %w", userID, err)
	}
	return nil
}

// Ensure returns the user's key, generating and persisting one if absent.
func (s *FeedKeyService) Ensure(ctx context.Context, userID string) (string, error) {
	key, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}
	return s.Regenerate(ctx, userID)
}

// Regenerate generates and persists a fresh key for the user, replacing
// any previous one. The old key stops resolving immediately. Generation is
// retried a bounded number of times if the fresh key collides with one
// already stored for another user.
func (s *FeedKeyService) Regenerate(ctx context.Context, userID string) (string, error) {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		key, err := GenerateFeedKey()
		if err != nil {
			return "", err
		}
		if err := s.Set(ctx, userID, key); err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return "", err
		}
		return key, nil
	}
	return "", fmt.Errorf("regenerate feed key for user %s: %w", userID, lastErr)
}

// FindUserByKey resolves a presented key to the user holding it. Returns
// ErrNoUser when no stored key matches; an empty key never matches.
func (s *FeedKeyService) FindUserByKey(ctx context.Context, key string) (*model.User, error) {
	if key == "" {
		return nil, ErrNoUser
	}

	var u model.User
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.login, u.display_name, u.roles, u.super_admin, u.created_at
         FROM users u JOIN user_meta m ON m.user_id = u.id
         WHERE m.meta_key = $1 AND m.meta_value = $2`,
		FeedKeyMetaKey, key,
	).Scan(&u.ID, &u.Login, &u.DisplayName, &u.Roles, &u.SuperAdmin, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNoUser
	}
	if err != nil {
		return nil, fmt.Errorf("find user by feed key: %w", err)
	}
	return &u, nil
}
