package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/aquaentry/models"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("duplicate key")

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("record not found")

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	Save(ctx context.Context, u *models.User) error
}

// SampleRepository persists water samples.
type SampleRepository interface {
	Create(ctx context.Context, s *models.WaterSample) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WaterSample, int64, error)
	AllByUser(ctx context.Context, userID uuid.UUID) ([]models.WaterSample, error)
}

// GormUserRepository is the Postgres UserRepository.
type GormUserRepository struct{ DB *gorm.DB }

func (r GormUserRepository) Create(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r GormUserRepository) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r GormUserRepository) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r GormUserRepository) Taken(ctx context.Context, username, email string) (bool, bool, error) {
	var byName, byEmail int64
	db := r.DB.WithContext(ctx).Model(&models.User{})
	if err := db.Where("username = ?", username).Count(&byName).Error; err != nil {
		return false, false, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&byEmail).Error; err != nil {
		return false, false, err
	}
	return byName > 0, byEmail > 0, nil
}

func (r GormUserRepository) Save(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Save(u).Error
}

// GormSampleRepository is the Postgres SampleRepository.
type GormSampleRepository struct{ DB *gorm.DB }

func (r GormSampleRepository) Create(ctx context.Context, s *models.WaterSample) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r GormSampleRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WaterSample, int64, error) {
	var out []models.WaterSample
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.WaterSample{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r GormSampleRepository) AllByUser(ctx context.Context, userID uuid.UUID) ([]models.WaterSample, error) {
	var out []models.WaterSample
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("submitted_at ASC").Find(&out).Error
	return out, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
