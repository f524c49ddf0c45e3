package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

// VoterRepository holds the per-election voter roll.
type VoterRepository struct {
	db *gorm.DB
}

func NewVoterRepository(db *gorm.DB) *VoterRepository {
	return &VoterRepository{db: db}
}

type voterModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ElectionID string    `gorm:"column:election_id;uniqueIndex:idx_voters_election_email,priority:1"`
	RegEmail   string    `gorm:"column:reg_email;uniqueIndex:idx_voters_election_email,priority:2"`
	FullName   string    `gorm:"column:fullname"`
	College    string    `gorm:"column:college"`
	SchoolID   string    `gorm:"column:school_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (voterModel) TableName() string {
	return "voters_list"
}

func (m voterModel) toDomain() domain.VoterRollEntry {
	return domain.VoterRollEntry{
		ID:         domain.VoterID(m.ID),
		ElectionID: domain.ElectionID(m.ElectionID),
		RegEmail:   m.RegEmail,
		FullName:   m.FullName,
		College:    m.College,
		SchoolID:   m.SchoolID,
		CreatedAt:  m.CreatedAt,
	}
}

func fromDomainVoter(v domain.VoterRollEntry) voterModel {
	return voterModel{
		ID:         string(v.ID),
		ElectionID: string(v.ElectionID),
		RegEmail:   v.RegEmail,
		FullName:   v.FullName,
		College:    v.College,
		SchoolID:   v.SchoolID,
		CreatedAt:  v.CreatedAt,
	}
}

func (r *VoterRepository) ListByElection(ctx context.Context, electionID domain.ElectionID) ([]domain.VoterRollEntry, error) {
	var models []voterModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm voters: list: %w", err)
	}

	result := make([]domain.VoterRollEntry, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *VoterRepository) ListEmails(ctx context.Context, electionID domain.ElectionID) ([]string, error) {
	var emails []string
	if err := r.db.WithContext(ctx).Model(&voterModel{}).
		Where("election_id = ?", electionID).
		Pluck("reg_email", &emails).Error; err != nil {
		return nil, fmt.Errorf("gorm voters: list emails: %w", err)
	}
	return emails, nil
}

func (r *VoterRepository) BulkCreate(ctx context.Context, entries []domain.VoterRollEntry) error {
	if len(entries) == 0 {
		return nil
	}

	// One insert for the whole batch keeps the import a single round-trip.
	models := make([]voterModel, len(entries))
	for i, entry := range entries {
		models[i] = fromDomainVoter(entry)
	}

	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("gorm voters: bulk create: %w", err)
	}
	return nil
}

func (r *VoterRepository) Update(ctx context.Context, entry domain.VoterRollEntry) error {
	model := fromDomainVoter(entry)
	res := r.db.WithContext(ctx).Model(&voterModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"reg_email": model.RegEmail,
			"fullname":  model.FullName,
			"college":   model.College,
			"school_id": model.SchoolID,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("gorm voters: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VoterRepository) DeleteByIDs(ctx context.Context, electionID domain.ElectionID, ids []domain.VoterID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = string(id)
	}

	// Election scope keeps a stray id list from touching another roll.
	res := r.db.WithContext(ctx).
		Where("election_id = ? AND id IN ?", electionID, keys).
		Delete(&voterModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("gorm voters: delete by ids: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *VoterRepository) DeleteByElection(ctx context.Context, electionID domain.ElectionID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Delete(&voterModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("gorm voters: delete all: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *VoterRepository) EmailRegistered(ctx context.Context, electionID domain.ElectionID, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&voterModel{}).
		Where("election_id = ? AND reg_email = ?", electionID, email).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("gorm voters: email registered: %w", err)
	}
	return count > 0, nil
}

var _ domain.VoterRepository = (*VoterRepository)(nil)
