package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

// ElectionRepository maps the election directory to GORM tables.
type ElectionRepository struct {
	db *gorm.DB
}

func NewElectionRepository(db *gorm.DB) *ElectionRepository {
	return &ElectionRepository{db: db}
}

type electionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	StartDate   time.Time `gorm:"column:start_date"`
	EndDate     time.Time `gorm:"column:end_date"`
	Status      string    `gorm:"column:status"`
	IsCurrent   bool      `gorm:"column:is_current"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func (m electionModel) toDomain() domain.Election {
	return domain.Election{
		ID:          domain.ElectionID(m.ID),
		Title:       m.Title,
		Description: m.Description,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Status:      domain.ElectionStatus(m.Status),
		IsCurrent:   m.IsCurrent,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromDomainElection(e domain.Election) electionModel {
	return electionModel{
		ID:          string(e.ID),
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Status:      string(e.Status),
		IsCurrent:   e.IsCurrent,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// CreateCurrent runs the clear-then-insert handoff of the is_current flag
// inside one transaction so a failed insert cannot leave the directory
// without a current election.
func (r *ElectionRepository) CreateCurrent(ctx context.Context, e domain.Election) error {
	model := fromDomainElection(e)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&electionModel{}).
			Where("is_current = ?", true).
			Update("is_current", false).Error; err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return fmt.Errorf("gorm elections: create current: %w", err)
	}
	return nil
}

func (r *ElectionRepository) List(ctx context.Context) ([]domain.Election, error) {
	var models []electionModel
	if err := r.db.WithContext(ctx).
		// Current election first, then newest created.
		Order("is_current DESC, created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm elections: list: %w", err)
	}

	result := make([]domain.Election, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *ElectionRepository) FindByID(ctx context.Context, id domain.ElectionID) (domain.Election, error) {
	var model electionModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Election{}, domain.ErrNotFound
		}
		return domain.Election{}, fmt.Errorf("gorm elections: find by id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *ElectionRepository) ListCurrent(ctx context.Context) ([]domain.Election, error) {
	var models []electionModel
	if err := r.db.WithContext(ctx).
		Where("is_current = ?", true).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm elections: list current: %w", err)
	}

	result := make([]domain.Election, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *ElectionRepository) UpdateStatus(ctx context.Context, id domain.ElectionID, status domain.ElectionStatus, isCurrent *bool) error {
	fields := map[string]any{"status": string(status)}
	if isCurrent != nil {
		fields["is_current"] = *isCurrent
	}

	res := r.db.WithContext(ctx).Model(&electionModel{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("gorm elections: update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ElectionRepository) UpdateEndDate(ctx context.Context, id domain.ElectionID, endDate time.Time) error {
	res := r.db.WithContext(ctx).Model(&electionModel{}).
		Where("id = ?", id).
		Update("end_date", endDate)
	if res.Error != nil {
		return fmt.Errorf("gorm elections: update end date: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.ElectionRepository = (*ElectionRepository)(nil)
