package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

// PositionRepository persists the contested positions.
type PositionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

type positionModel struct {
	ID             string        `gorm:"column:id;primaryKey"`
	Title          string        `gorm:"column:title"`
	Description    string        `gorm:"column:description"`
	Order          int           `gorm:"column:display_order"`
	MaxCandidate   int           `gorm:"column:max_candidate"`
	CollegeCanVote string        `gorm:"column:college_can_vote"`
	College        *collegeModel `gorm:"foreignKey:CollegeCanVote;references:ID"`
	CreatedAt      time.Time     `gorm:"column:created_at"`
	UpdatedAt      time.Time     `gorm:"column:updated_at"`
}

func (positionModel) TableName() string {
	return "positions"
}

func (m positionModel) toDomain() domain.Position {
	p := domain.Position{
		ID:             domain.PositionID(m.ID),
		Title:          m.Title,
		Description:    m.Description,
		Order:          m.Order,
		MaxCandidate:   m.MaxCandidate,
		CollegeCanVote: domain.CollegeID(m.CollegeCanVote),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.College != nil {
		college := m.College.toDomain()
		p.College = &college
	}
	return p
}

func fromDomainPosition(p domain.Position) positionModel {
	return positionModel{
		ID:             string(p.ID),
		Title:          p.Title,
		Description:    p.Description,
		Order:          p.Order,
		MaxCandidate:   p.MaxCandidate,
		CollegeCanVote: string(p.CollegeCanVote),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r *PositionRepository) List(ctx context.Context) ([]domain.Position, error) {
	var models []positionModel
	if err := r.db.WithContext(ctx).
		// Preload brings the voting college along for display.
		Preload("College").
		Order("display_order ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm positions: list: %w", err)
	}

	result := make([]domain.Position, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *PositionRepository) FindByID(ctx context.Context, id domain.PositionID) (domain.Position, error) {
	var model positionModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Position{}, domain.ErrNotFound
		}
		return domain.Position{}, fmt.Errorf("gorm positions: find by id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *PositionRepository) Create(ctx context.Context, p domain.Position) error {
	model := fromDomainPosition(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm positions: insert: %w", err)
	}
	return nil
}

func (r *PositionRepository) Update(ctx context.Context, p domain.Position) error {
	model := fromDomainPosition(p)
	// Only the editable fields; timestamps handled by GORM.
	res := r.db.WithContext(ctx).Model(&positionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"title":            model.Title,
			"description":      model.Description,
			"display_order":    model.Order,
			"max_candidate":    model.MaxCandidate,
			"college_can_vote": model.CollegeCanVote,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm positions: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PositionRepository) Delete(ctx context.Context, id domain.PositionID) error {
	if err := r.db.WithContext(ctx).
		Delete(&positionModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("gorm positions: delete: %w", err)
	}
	return nil
}

var _ domain.PositionRepository = (*PositionRepository)(nil)
