package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

// ProfileRepository resolves the profile row behind an external auth user.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	UserID       string    `gorm:"column:user_id"`
	FirstName    string    `gorm:"column:first_name"`
	MiddleName   string    `gorm:"column:middle_name"`
	LastName     string    `gorm:"column:last_name"`
	SchoolNumber string    `gorm:"column:school_number"`
	Email        string    `gorm:"column:email"`
	College      string    `gorm:"column:college"`
	Role         string    `gorm:"column:role"`
	AvatarURL    string    `gorm:"column:avatar_url"`
	IsAdmin      bool      `gorm:"column:is_admin"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (profileModel) TableName() string {
	return "user_profile"
}

func (m profileModel) toDomain() domain.UserProfile {
	return domain.UserProfile{
		ID:           domain.ProfileID(m.ID),
		UserID:       m.UserID,
		FirstName:    m.FirstName,
		MiddleName:   m.MiddleName,
		LastName:     m.LastName,
		SchoolNumber: m.SchoolNumber,
		Email:        m.Email,
		College:      m.College,
		Role:         m.Role,
		AvatarURL:    m.AvatarURL,
		IsAdmin:      m.IsAdmin,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromDomainProfile(p domain.UserProfile) profileModel {
	return profileModel{
		ID:           string(p.ID),
		UserID:       p.UserID,
		FirstName:    p.FirstName,
		MiddleName:   p.MiddleName,
		LastName:     p.LastName,
		SchoolNumber: p.SchoolNumber,
		Email:        p.Email,
		College:      p.College,
		Role:         p.Role,
		AvatarURL:    p.AvatarURL,
		IsAdmin:      p.IsAdmin,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (domain.UserProfile, error) {
	var model profileModel
	if err := r.db.WithContext(ctx).
		First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserProfile{}, domain.ErrNotFound
		}
		return domain.UserProfile{}, fmt.Errorf("gorm profiles: find by user id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id domain.ProfileID) (domain.UserProfile, error) {
	var model profileModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserProfile{}, domain.ErrNotFound
		}
		return domain.UserProfile{}, fmt.Errorf("gorm profiles: find by id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *ProfileRepository) Create(ctx context.Context, p domain.UserProfile) error {
	model := fromDomainProfile(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm profiles: insert: %w", err)
	}
	return nil
}

func (r *ProfileRepository) UpdateRole(ctx context.Context, id domain.ProfileID, role string) error {
	res := r.db.WithContext(ctx).Model(&profileModel{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("gorm profiles: update role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.ProfileRepository = (*ProfileRepository)(nil)
