// Package redisstore reads user policies from Redis. Each user is one JSON
// value under "<prefix><subject>":
//
//	{"roles": ["editor"], "permissions": ["posts.write", "posts.read"]}
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chr1sbest/permguard"
	"github.com/chr1sbest/permguard/internal/logging"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "policy:user:"

var _ permguard.PolicyHandler = (*Store)(nil)

type document struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Store is a PolicyHandler backed by a Redis client.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger used for backend failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns a Store reading through rdb.
func New(rdb redis.UniversalClient, opts ...Option) *Store {
	s := &Store{rdb: rdb, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.Resolve(s.logger)
	return s
}

func (s *Store) key(subject string) string {
	return s.prefix + subject
}

// GetUserPolicy loads the policy of the subject on ctx. Anonymous requests
// and missing keys yield an empty policy.
func (s *Store) GetUserPolicy(ctx context.Context) (permguard.UserPolicy, error) {
	subject, ok := permguard.SubjectFromContext(ctx)
	if !ok {
		return permguard.UserPolicy{}, nil
	}

	val, err := s.rdb.Get(ctx, s.key(subject)).Bytes()
	if errors.Is(err, redis.Nil) {
		return permguard.UserPolicy{}, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "load user policy failed",
			"event", "policy_store_get_failed",
			"module", "stores/redisstore",
			"subject", subject,
			"error", err.Error(),
		)
		return permguard.UserPolicy{}, fmt.Errorf("redis get %s: %w", s.key(subject), err)
	}

	var doc document
	if err := json.Unmarshal(val, &doc); err != nil {
		return permguard.UserPolicy{}, fmt.Errorf("decode policy for %s: %w", subject, err)
	}
	return permguard.NewUserPolicy(doc.Roles, doc.Permissions), nil
}

// Put stores the policy of subject. A zero ttl keeps it until overwritten.
func (s *Store) Put(ctx context.Context, subject string, policy permguard.UserPolicy, ttl time.Duration) error {
	data, err := json.Marshal(document{Roles: policy.Roles(), Permissions: policy.Permissions()})
	if err != nil {
		return fmt.Errorf("encode policy for %s: %w", subject, err)
	}
	if err := s.rdb.Set(ctx, s.key(subject), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key(subject), err)
	}
	return nil
}

// Delete removes the policy of subject.
func (s *Store) Delete(ctx context.Context, subject string) error {
	if err := s.rdb.Del(ctx, s.key(subject)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key(subject), err)
	}
	return nil
}
