package repository

import (
	"time"

	"github.com/ikkim/storybook-backend/internal/app/model"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"gorm.io/gorm"
)

type AdminUserRepository interface {
	Create(admin *model.AdminUser) error
	FindByID(id uint) (*model.AdminUser, error)
	FindByUsername(username string) (*model.AdminUser, error)
	Update(admin *model.AdminUser) error
	TouchLastLogin(id uint, at time.Time) error
	Count() (int64, error)
}

type adminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) Create(admin *model.AdminUser) error {
	logger.Debug("Creating admin user in database", map[string]interface{}{
		"username": admin.Username,
	})

	if err := r.db.Create(admin).Error; err != nil {
		logger.Error("Failed to create admin user in database", err, map[string]interface{}{
			"username": admin.Username,
		})
		return err
	}

	logger.Debug("Admin user created in database", map[string]interface{}{
		"admin_id": admin.ID,
		"username": admin.Username,
	})
	return nil
}

func (r *adminUserRepository) FindByID(id uint) (*model.AdminUser, error) {
	var admin model.AdminUser
	if err := r.db.First(&admin, id).Error; err != nil {
		logger.Error("Failed to find admin user by ID in database", err, map[string]interface{}{
			"admin_id": id,
		})
		return nil, err
	}
	return &admin, nil
}

func (r *adminUserRepository) FindByUsername(username string) (*model.AdminUser, error) {
	logger.Debug("Finding admin user by username in database", map[string]interface{}{
		"username": username,
	})

	var admin model.AdminUser
	if err := r.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find admin user by username in database", err, map[string]interface{}{
				"username": username,
			})
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminUserRepository) Update(admin *model.AdminUser) error {
	logger.Debug("Updating admin user in database", map[string]interface{}{
		"admin_id": admin.ID,
	})

	if err := r.db.Save(admin).Error; err != nil {
		logger.Error("Failed to update admin user in database", err, map[string]interface{}{
			"admin_id": admin.ID,
		})
		return err
	}
	return nil
}

func (r *adminUserRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&model.AdminUser{}).Where("id = ?", id).Update("last_login_at", at).Error
}

func (r *adminUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.AdminUser{}).Count(&count).Error
	return count, err
}
