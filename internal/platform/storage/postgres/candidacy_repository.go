package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

// CandidacyRepository stores applications and the joined candidate roster
// the tally is seeded from.
type CandidacyRepository struct {
	db *gorm.DB
}

func NewCandidacyRepository(db *gorm.DB) *CandidacyRepository {
	return &CandidacyRepository{db: db}
}

type candidacyModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	ProfileID    string    `gorm:"column:user_id;index"`
	ElectionID   string    `gorm:"column:election_id;index"`
	PositionID   string    `gorm:"column:position_id;index"`
	PartylistID  string    `gorm:"column:partylist_id"`
	Platform     string    `gorm:"column:platform"`
	DocumentURLs []string  `gorm:"column:document_urls;serializer:json"`
	Status       int       `gorm:"column:status"`
	AppliedAt    time.Time `gorm:"column:applied_at"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (candidacyModel) TableName() string {
	return "candidacy_application"
}

func (m candidacyModel) toDomain() domain.CandidacyApplication {
	return domain.CandidacyApplication{
		ID:           domain.ApplicationID(m.ID),
		ProfileID:    domain.ProfileID(m.ProfileID),
		ElectionID:   domain.ElectionID(m.ElectionID),
		PositionID:   domain.PositionID(m.PositionID),
		PartylistID:  domain.PartylistID(m.PartylistID),
		Platform:     m.Platform,
		DocumentURLs: m.DocumentURLs,
		Status:       domain.ApplicationStatus(m.Status),
		AppliedAt:    m.AppliedAt,
		CreatedAt:    m.CreatedAt,
	}
}

func fromDomainCandidacy(a domain.CandidacyApplication) candidacyModel {
	return candidacyModel{
		ID:           string(a.ID),
		ProfileID:    string(a.ProfileID),
		ElectionID:   string(a.ElectionID),
		PositionID:   string(a.PositionID),
		PartylistID:  string(a.PartylistID),
		Platform:     a.Platform,
		DocumentURLs: a.DocumentURLs,
		Status:       int(a.Status),
		AppliedAt:    a.AppliedAt,
		CreatedAt:    a.CreatedAt,
	}
}

func (r *CandidacyRepository) Create(ctx context.Context, a domain.CandidacyApplication) error {
	model := fromDomainCandidacy(a)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm candidacy: insert: %w", err)
	}
	return nil
}

func (r *CandidacyRepository) FindByID(ctx context.Context, id domain.ApplicationID) (domain.CandidacyApplication, error) {
	var model candidacyModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CandidacyApplication{}, domain.ErrNotFound
		}
		return domain.CandidacyApplication{}, fmt.Errorf("gorm candidacy: find by id: %w", err)
	}
	return model.toDomain(), nil
}

func (r *CandidacyRepository) ListByElection(ctx context.Context, electionID domain.ElectionID, status *domain.ApplicationStatus) ([]domain.CandidacyApplication, error) {
	query := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", int(*status))
	}

	var models []candidacyModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm candidacy: list by election: %w", err)
	}

	result := make([]domain.CandidacyApplication, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *CandidacyRepository) ListByProfileAndElections(ctx context.Context, profileID domain.ProfileID, electionIDs []domain.ElectionID) ([]domain.CandidacyApplication, error) {
	if len(electionIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(electionIDs))
	for i, id := range electionIDs {
		ids[i] = string(id)
	}

	var models []candidacyModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND election_id IN ?", profileID, ids).
		Order("applied_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm candidacy: list by profile: %w", err)
	}

	result := make([]domain.CandidacyApplication, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *CandidacyRepository) ExistsActive(ctx context.Context, profileID domain.ProfileID, electionID domain.ElectionID, positionID domain.PositionID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&candidacyModel{}).
		// Rejected applications do not block a re-application.
		Where("user_id = ? AND election_id = ? AND position_id = ? AND status IN ?",
			profileID, electionID, positionID,
			[]int{int(domain.ApplicationPending), int(domain.ApplicationApproved)}).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("gorm candidacy: exists active: %w", err)
	}
	return count > 0, nil
}

func (r *CandidacyRepository) UpdateStatus(ctx context.Context, id domain.ApplicationID, status domain.ApplicationStatus) error {
	res := r.db.WithContext(ctx).Model(&candidacyModel{}).
		Where("id = ?", id).
		Update("status", int(status))
	if res.Error != nil {
		return fmt.Errorf("gorm candidacy: update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CandidacyRepository) Delete(ctx context.Context, id domain.ApplicationID) error {
	if err := r.db.WithContext(ctx).
		Delete(&candidacyModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("gorm candidacy: delete: %w", err)
	}
	return nil
}

func (r *CandidacyRepository) ListApproved(ctx context.Context, electionID domain.ElectionID) ([]domain.ApprovedCandidate, error) {
	type row struct {
		ID                  string
		PositionID          string
		PositionTitle       string
		PositionDescription string
		PositionOrder       int
		FirstName           string
		LastName            string
		AvatarURL           string
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		// Raw SQL keeps the three-way join portable across Postgres and the
		// sqlite test database.
		Raw(`
            SELECT ca.id AS id,
                   ca.position_id AS position_id,
                   COALESCE(p.title, '') AS position_title,
                   COALESCE(p.description, '') AS position_description,
                   COALESCE(p.display_order, 0) AS position_order,
                   COALESCE(up.first_name, '') AS first_name,
                   COALESCE(up.last_name, '') AS last_name,
                   COALESCE(up.avatar_url, '') AS avatar_url
            FROM candidacy_application ca
            LEFT JOIN positions p ON p.id = ca.position_id
            LEFT JOIN user_profile up ON up.id = ca.user_id
            WHERE ca.election_id = ? AND ca.status = ?
            ORDER BY position_order ASC, ca.created_at ASC
        `, electionID, int(domain.ApplicationApproved)).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("gorm candidacy: list approved: %w", err)
	}

	result := make([]domain.ApprovedCandidate, len(rows))
	for i, item := range rows {
		result[i] = domain.ApprovedCandidate{
			ID:                  domain.ApplicationID(item.ID),
			PositionID:          domain.PositionID(item.PositionID),
			PositionTitle:       item.PositionTitle,
			PositionDescription: item.PositionDescription,
			PositionOrder:       item.PositionOrder,
			FirstName:           item.FirstName,
			LastName:            item.LastName,
			AvatarURL:           item.AvatarURL,
		}
	}
	return result, nil
}

var _ domain.CandidacyRepository = (*CandidacyRepository)(nil)
