package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

type PartylistRepository struct {
	db *gorm.DB
}

func NewPartylistRepository(db *gorm.DB) *PartylistRepository {
	return &PartylistRepository{db: db}
}

type partylistModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description"`
	Platform    string    `gorm:"column:platform"`
	DateFounded time.Time `gorm:"column:date_founded"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (partylistModel) TableName() string {
	return "partylists"
}

func (m partylistModel) toDomain() domain.Partylist {
	return domain.Partylist{
		ID:          domain.PartylistID(m.ID),
		Name:        m.Name,
		Description: m.Description,
		Platform:    m.Platform,
		DateFounded: m.DateFounded,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromDomainPartylist(p domain.Partylist) partylistModel {
	return partylistModel{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Platform:    p.Platform,
		DateFounded: p.DateFounded,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r *PartylistRepository) List(ctx context.Context) ([]domain.Partylist, error) {
	var models []partylistModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm partylists: list: %w", err)
	}

	result := make([]domain.Partylist, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *PartylistRepository) Create(ctx context.Context, p domain.Partylist) error {
	model := fromDomainPartylist(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm partylists: insert: %w", err)
	}
	return nil
}

func (r *PartylistRepository) Update(ctx context.Context, p domain.Partylist) error {
	model := fromDomainPartylist(p)
	res := r.db.WithContext(ctx).Model(&partylistModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":         model.Name,
			"description":  model.Description,
			"platform":     model.Platform,
			"date_founded": model.DateFounded,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm partylists: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PartylistRepository) Delete(ctx context.Context, id domain.PartylistID) error {
	if err := r.db.WithContext(ctx).
		Delete(&partylistModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("gorm partylists: delete: %w", err)
	}
	return nil
}

var _ domain.PartylistRepository = (*PartylistRepository)(nil)
