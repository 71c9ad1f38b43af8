package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/internal/app/repository"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"github.com/ikkim/storybook-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAdminNotFound      = errors.New("admin user not found")
	ErrAdminExists        = errors.New("admin user already exists")
	ErrSessionRevoked     = errors.New("admin session has been logged out")
)

// SessionRevoker remembers logged-out sessions. Without one, logout only
// clears the client cookie and tokens stay valid until they expire.
type SessionRevoker interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// AdminSession is a signed-in admin and the token representing the session.
type AdminSession struct {
	Admin  *model.AdminUser
	Token  string
	Claims *util.AdminClaims
}

type AdminAuthService interface {
	Login(username, password string) (*AdminSession, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*util.AdminClaims, error)
	CreateAdmin(username, email, password string, superuser bool) (*model.AdminUser, error)
	EnsureAdmin(username, email, password string) (bool, error)
}

type adminAuthService struct {
	adminRepo repository.AdminUserRepository
	revoker   SessionRevoker
	jwtSecret string
	expiry    time.Duration
	now       func() time.Time
}

// NewAdminAuthService builds the admin auth service. revoker may be nil.
func NewAdminAuthService(
	adminRepo repository.AdminUserRepository,
	revoker SessionRevoker,
	jwtSecret string,
	expiry time.Duration,
) AdminAuthService {
	return &adminAuthService{
		adminRepo: adminRepo,
		revoker:   revoker,
		jwtSecret: jwtSecret,
		expiry:    expiry,
		now:       time.Now,
	}
}

func (s *adminAuthService) Login(username, password string) (*AdminSession, error) {
	logger.Info("Admin login attempt", map[string]interface{}{
		"username": username,
	})

	admin, err := s.adminRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Admin login failed: user not found", map[string]interface{}{
				"username": username,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find admin user", err, map[string]interface{}{
			"username": username,
		})
		return nil, err
	}

	if !util.VerifyPassword(admin.PasswordHash, password) {
		logger.Warn("Admin login failed: invalid password", map[string]interface{}{
			"username": username,
		})
		return nil, ErrInvalidCredentials
	}

	token, claims, err := util.GenerateAdminToken(admin.ID, admin.Username, s.jwtSecret, s.expiry)
	if err != nil {
		logger.Error("Failed to generate admin token", err, map[string]interface{}{
			"admin_id": admin.ID,
		})
		return nil, err
	}

	now := s.now()
	if err := s.adminRepo.TouchLastLogin(admin.ID, now); err != nil {
		logger.Warn("Failed to record admin last login", map[string]interface{}{
			"admin_id": admin.ID,
			"error":    err.Error(),
		})
	} else {
		admin.LastLoginAt = &now
	}

	logger.Info("Admin logged in successfully", map[string]interface{}{
		"admin_id": admin.ID,
		"username": admin.Username,
	})
	return &AdminSession{Admin: admin, Token: token, Claims: claims}, nil
}

func (s *adminAuthService) Logout(ctx context.Context, token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		// nothing to revoke
		return nil
	}
	if s.revoker == nil {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.RemainingLifetime()); err != nil {
		logger.Error("Failed to revoke admin session", err, map[string]interface{}{
			"admin_id": claims.AdminID,
		})
		return err
	}

	logger.Info("Admin logged out", map[string]interface{}{
		"admin_id": claims.AdminID,
		"username": claims.Username,
	})
	return nil
}

func (s *adminAuthService) Authenticate(ctx context.Context, token string) (*util.AdminClaims, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if s.revoker == nil {
		return claims, nil
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

func (s *adminAuthService) CreateAdmin(username, email, password string, superuser bool) (*model.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewValidationError("username", "This field is required.")
	}

	if _, err := s.adminRepo.FindByUsername(username); err == nil {
		return nil, ErrAdminExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		if errors.Is(err, util.ErrEmptyPassword) {
			return nil, NewValidationError("password", "This field is required.")
		}
		return nil, err
	}

	admin := &model.AdminUser{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		IsSuperuser:  superuser,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}

	logger.Info("Admin user created", map[string]interface{}{
		"admin_id":  admin.ID,
		"username":  admin.Username,
		"superuser": admin.IsSuperuser,
	})
	return admin, nil
}

// EnsureAdmin creates the bootstrap superuser when the account does not exist
// yet. It reports whether an account was created.
func (s *adminAuthService) EnsureAdmin(username, email, password string) (bool, error) {
	_, err := s.adminRepo.FindByUsername(username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if _, err := s.CreateAdmin(username, email, password, true); err != nil {
		return false, err
	}
	return true, nil
}
