package mysql

import (
	"errors"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(user *model.User, newPassword string) error {
	return r.DB.Model(user).Update("password", newPassword).Error
}

// ListAll 周报投递时遍历全部活跃用户
func (r *UserRepository) ListAll() ([]model.User, error) {
	var list []model.User
	err := r.DB.Where("is_active = ?", true).Order("id ASC").Find(&list).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return list, nil
}
