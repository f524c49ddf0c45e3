package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

// CollegeRepository persists colleges and their logos' public URLs.
type CollegeRepository struct {
	db *gorm.DB
}

func NewCollegeRepository(db *gorm.DB) *CollegeRepository {
	return &CollegeRepository{db: db}
}

type collegeModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:college_name"`
	Alias     string    `gorm:"column:alias"`
	LogoURL   string    `gorm:"column:college_logo"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (collegeModel) TableName() string {
	return "colleges"
}

func (m collegeModel) toDomain() domain.College {
	return domain.College{
		ID:        domain.CollegeID(m.ID),
		Name:      m.Name,
		Alias:     m.Alias,
		LogoURL:   m.LogoURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainCollege(c domain.College) collegeModel {
	return collegeModel{
		ID:        string(c.ID),
		Name:      c.Name,
		Alias:     c.Alias,
		LogoURL:   c.LogoURL,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (r *CollegeRepository) List(ctx context.Context) ([]domain.College, error) {
	var models []collegeModel
	if err := r.db.WithContext(ctx).
		Order("college_name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm colleges: list: %w", err)
	}

	result := make([]domain.College, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *CollegeRepository) Create(ctx context.Context, c domain.College) error {
	model := fromDomainCollege(c)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm colleges: insert: %w", err)
	}
	return nil
}

func (r *CollegeRepository) Update(ctx context.Context, c domain.College) error {
	model := fromDomainCollege(c)
	res := r.db.WithContext(ctx).Model(&collegeModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"college_name": model.Name,
			"alias":        model.Alias,
			"college_logo": model.LogoURL,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm colleges: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CollegeRepository) Delete(ctx context.Context, id domain.CollegeID) error {
	if err := r.db.WithContext(ctx).
		Delete(&collegeModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("gorm colleges: delete: %w", err)
	}
	return nil
}

var _ domain.CollegeRepository = (*CollegeRepository)(nil)
