// Package postgres reads user policies from PostgreSQL through gorm.
//
// Users hold roles (user_roles), roles grant permissions (role_permissions)
// and users may also hold permissions directly (user_permissions).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/chr1sbest/permguard"
	"github.com/chr1sbest/permguard/internal/logging"
)

var (
	_ permguard.PolicyHandler     = (*Store)(nil)
	_ permguard.PermissionQuerier = (*Store)(nil)
)

// UserRole assigns a role to a user.
type UserRole struct {
	UserID string `gorm:"primaryKey;column:user_id"`
	Role   string `gorm:"primaryKey;column:role"`
}

func (UserRole) TableName() string { return "user_roles" }

// RolePermission grants a permission to a role.
type RolePermission struct {
	Role       string `gorm:"primaryKey;column:role"`
	Permission string `gorm:"primaryKey;column:permission"`
}

func (RolePermission) TableName() string { return "role_permissions" }

// UserPermission grants a permission to a user directly.
type UserPermission struct {
	UserID     string `gorm:"primaryKey;column:user_id"`
	Permission string `gorm:"primaryKey;column:permission"`
}

func (UserPermission) TableName() string { return "user_permissions" }

const permissionsQuery = `SELECT DISTINCT permission FROM (
	SELECT rp.permission FROM role_permissions rp
	JOIN user_roles ur ON ur.role = rp.role
	WHERE ur.user_id = ?
	UNION
	SELECT up.permission FROM user_permissions up
	WHERE up.user_id = ?
) effective ORDER BY permission`

const hasPermissionQuery = `SELECT EXISTS (
	SELECT 1 FROM role_permissions rp
	JOIN user_roles ur ON ur.role = rp.role
	WHERE ur.user_id = ? AND rp.permission = ?
	UNION ALL
	SELECT 1 FROM user_permissions up
	WHERE up.user_id = ? AND up.permission = ?
)`

// Store is a PolicyHandler backed by gorm.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewStore wraps an open gorm handle.
func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logging.Resolve(logger)}
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewStore(db, logger), nil
}

// Migrate creates the policy tables.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&UserRole{}, &RolePermission{}, &UserPermission{})
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetUserPolicy loads the roles and effective permissions of the subject on
// ctx. Anonymous requests get an empty policy without touching the database.
func (s *Store) GetUserPolicy(ctx context.Context) (permguard.UserPolicy, error) {
	subject, ok := permguard.SubjectFromContext(ctx)
	if !ok {
		return permguard.UserPolicy{}, nil
	}

	var roles []string
	err := s.db.WithContext(ctx).
		Model(&UserRole{}).
		Where("user_id = ?", subject).
		Order("role").
		Pluck("role", &roles).
		Error
	if err != nil {
		return permguard.UserPolicy{}, s.logError(ctx, "policy_store_roles_failed", subject, err)
	}

	var permissions []string
	err = s.db.WithContext(ctx).
		Raw(permissionsQuery, subject, subject).
		Scan(&permissions).
		Error
	if err != nil {
		return permguard.UserPolicy{}, s.logError(ctx, "policy_store_permissions_failed", subject, err)
	}

	return permguard.NewUserPolicy(roles, permissions), nil
}

// HasPermission answers a single permission check with one indexed query
// instead of loading the whole policy. A Guard uses it in preference to
// GetUserPolicy.
func (s *Store) HasPermission(ctx context.Context, permission string) (bool, error) {
	subject, ok := permguard.SubjectFromContext(ctx)
	if !ok {
		return false, nil
	}

	var exists bool
	err := s.db.WithContext(ctx).
		Raw(hasPermissionQuery, subject, permission, subject, permission).
		Scan(&exists).
		Error
	if err != nil {
		return false, s.logError(ctx, "policy_store_has_permission_failed", subject, err)
	}
	return exists, nil
}

func (s *Store) logError(ctx context.Context, event, subject string, err error) error {
	s.logger.ErrorContext(ctx, "load user policy failed",
		"event", event,
		"module", "stores/postgres",
		"subject", subject,
		"error", err.Error(),
	)
	return fmt.Errorf("load policy for %s: %w", subject, err)
}
