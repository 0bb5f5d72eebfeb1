package auth

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock

type Repository interface {
	Create(ctx context.Context, account *StaffAccount) error
	GetByUsername(ctx context.Context, username string) (*StaffAccount, error)
	GetByID(ctx context.Context, id uint) (*StaffAccount, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, account *StaffAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*StaffAccount, error) {
	var account StaffAccount
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	return &account, err
}

func (r *repository) GetByID(ctx context.Context, id uint) (*StaffAccount, error) {
	var account StaffAccount
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	return &account, err
}
