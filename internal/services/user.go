package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/audit"
	"github.com/SigNoz/storefront-go-app/internal/auth"
	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/validation"
	"go.uber.org/zap"
)

// UserService handles user-related operations
type UserService struct {
	db        *db.DB
	metrics   *metrics.AppMetrics
	validator *validation.Validator
	hasher    *auth.PasswordHasher
	audit     audit.Logger
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(database *db.DB, m *metrics.AppMetrics, v *validation.Validator, hasher *auth.PasswordHasher, auditLog audit.Logger, logger *zap.Logger) *UserService {
	return &UserService{
		db:        database,
		metrics:   m,
		validator: v,
		hasher:    hasher,
		audit:     auditLog,
		logger:    logger,
	}
}

// CreateUser registers a new account. Emails are unique.
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	start := time.Now()
	query := "INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)"
	result, err := s.db.ExecContext(ctx, query, req.Name, req.Email, hash, createdAt)
	s.metrics.RecordDBQuery(ctx, "INSERT", "users", query, start, err == nil)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, conflict("User with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	s.metrics.RecordActiveUser(ctx, id)
	s.recordAudit(ctx, audit.ActionCreateUser, id, map[string]any{"email": req.Email})

	return &models.User{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    createdAt,
	}, nil
}

func (s *UserService) getUser(ctx context.Context, id int64) (*models.User, error) {
	start := time.Now()
	query := "SELECT id, name, email, password_hash, profile_img, created_at FROM users WHERE id = ?"
	var user models.User
	var img sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &img, &user.CreatedAt,
	)
	s.metrics.RecordDBQuery(ctx, "SELECT", "users", query, start, err == nil || err == sql.ErrNoRows)

	if err == sql.ErrNoRows {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.ProfileImg = nullString(img)
	return &user, nil
}

// GetProfile returns the public profile of a user
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		Name:       user.Name,
		Email:      user.Email,
		ProfileImg: user.ProfileImg,
	}, nil
}

// UpdateProfile applies a partial update. Changing the password requires the
// current one. An empty profile_img clears the image.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.UserView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var changed []string
	if req.Password != nil {
		if req.OldPassword == nil || *req.OldPassword == "" {
			return nil, invalidInput("Old password is required to change password")
		}
		if !s.hasher.Verify(*req.OldPassword, user.PasswordHash) {
			return nil, unauthorized("Old password is incorrect")
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		changed = append(changed, "password")
	}
	if req.Name != nil {
		user.Name = *req.Name
		changed = append(changed, "name")
	}
	if req.Email != nil {
		user.Email = *req.Email
		changed = append(changed, "email")
	}
	if req.ProfileImg != nil {
		user.ProfileImg = req.ProfileImg
		if *req.ProfileImg == "" {
			user.ProfileImg = nil
		}
		changed = append(changed, "profile_img")
	}

	if len(changed) > 0 {
		start := time.Now()
		query := "UPDATE users SET name = ?, email = ?, password_hash = ?, profile_img = ? WHERE id = ?"
		_, err = s.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.ProfileImg, userID)
		s.metrics.RecordDBQuery(ctx, "UPDATE", "users", query, start, err == nil)
		if err != nil {
			if db.IsDuplicateKey(err) {
				return nil, conflict("Email is already in use")
			}
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		s.recordAudit(ctx, audit.ActionUpdateProfile, userID, map[string]any{"fields": changed})
	}

	view := user.View()
	return &view, nil
}

func (s *UserService) recordAudit(ctx context.Context, action string, userID int64, data map[string]any) {
	err := s.audit.Record(ctx, audit.Entry{
		Action:   action,
		EntityID: strconv.FormatInt(userID, 10),
		UserID:   userID,
		Data:     data,
	})
	if err != nil {
		s.logger.Warn("failed to record audit entry",
			zap.String("action", action),
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}
