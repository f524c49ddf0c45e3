package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

// VoteRepository stores ballots and exposes the aggregate reads the tally
// needs.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

type voteModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ElectionID  string    `gorm:"column:election_id;uniqueIndex:idx_votes_election_voter,priority:1"`
	CandidateID string    `gorm:"column:candidate_id;index"`
	VoterID     string    `gorm:"column:voter_id;uniqueIndex:idx_votes_election_voter,priority:2"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func (m voteModel) toDomain() domain.Vote {
	return domain.Vote{
		ID:          domain.VoteID(m.ID),
		ElectionID:  domain.ElectionID(m.ElectionID),
		CandidateID: domain.ApplicationID(m.CandidateID),
		VoterID:     domain.ProfileID(m.VoterID),
		CreatedAt:   m.CreatedAt,
	}
}

func fromDomainVote(v domain.Vote) voteModel {
	return voteModel{
		ID:          string(v.ID),
		ElectionID:  string(v.ElectionID),
		CandidateID: string(v.CandidateID),
		VoterID:     string(v.VoterID),
		CreatedAt:   v.CreatedAt,
	}
}

func (r *VoteRepository) Create(ctx context.Context, v domain.Vote) error {
	model := fromDomainVote(v)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		// The unique index turns a raced double submission into a clean
		// conflict instead of a second ballot.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyVoted
		}
		return fmt.Errorf("gorm votes: insert: %w", err)
	}
	return nil
}

func (r *VoteRepository) HasVoted(ctx context.Context, voterID domain.ProfileID, electionID domain.ElectionID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("election_id = ? AND voter_id = ?", electionID, voterID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("gorm votes: has voted: %w", err)
	}
	return count > 0, nil
}

func (r *VoteRepository) CountByCandidate(ctx context.Context, electionID domain.ElectionID) (map[domain.ApplicationID]int64, error) {
	type result struct {
		CandidateID string
		Total       int64
	}
	var res []result
	if err := r.db.WithContext(ctx).Model(&voteModel{}).
		Select("candidate_id as candidate_id, COUNT(*) as total").
		Where("election_id = ?", electionID).
		Group("candidate_id").
		Scan(&res).Error; err != nil {
		return nil, fmt.Errorf("gorm votes: count by candidate: %w", err)
	}

	totals := make(map[domain.ApplicationID]int64, len(res))
	for _, item := range res {
		totals[domain.ApplicationID(item.CandidateID)] = item.Total
	}
	return totals, nil
}

func (r *VoteRepository) ListByElection(ctx context.Context, electionID domain.ElectionID) ([]domain.Vote, error) {
	var models []voteModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm votes: list by election: %w", err)
	}

	result := make([]domain.Vote, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *VoteRepository) ListByCandidate(ctx context.Context, candidateID domain.ApplicationID) ([]domain.Vote, error) {
	var models []voteModel
	if err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm votes: list by candidate: %w", err)
	}

	result := make([]domain.Vote, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *VoteRepository) ListByVoter(ctx context.Context, voterID domain.ProfileID, electionID domain.ElectionID) ([]domain.BallotDetail, error) {
	type row struct {
		ID            string
		ElectionID    string
		CandidateID   string
		FirstName     string
		LastName      string
		PositionID    string
		PositionTitle string
		PositionOrder int
		CreatedAt     time.Time
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		Raw(`
            SELECT v.id AS id,
                   v.election_id AS election_id,
                   v.candidate_id AS candidate_id,
                   COALESCE(up.first_name, '') AS first_name,
                   COALESCE(up.last_name, '') AS last_name,
                   COALESCE(ca.position_id, '') AS position_id,
                   COALESCE(p.title, '') AS position_title,
                   COALESCE(p.display_order, 0) AS position_order,
                   v.created_at AS created_at
            FROM votes v
            LEFT JOIN candidacy_application ca ON ca.id = v.candidate_id
            LEFT JOIN user_profile up ON up.id = ca.user_id
            LEFT JOIN positions p ON p.id = ca.position_id
            WHERE v.voter_id = ? AND v.election_id = ?
            ORDER BY position_order ASC
        `, voterID, electionID).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("gorm votes: list by voter: %w", err)
	}

	result := make([]domain.BallotDetail, len(rows))
	for i, item := range rows {
		result[i] = domain.BallotDetail{
			VoteID:        domain.VoteID(item.ID),
			ElectionID:    domain.ElectionID(item.ElectionID),
			CandidateID:   domain.ApplicationID(item.CandidateID),
			FirstName:     item.FirstName,
			LastName:      item.LastName,
			PositionID:    domain.PositionID(item.PositionID),
			PositionTitle: item.PositionTitle,
			PositionOrder: item.PositionOrder,
			CastAt:        item.CreatedAt,
		}
	}
	return result, nil
}

var _ domain.VoteRepository = (*VoteRepository)(nil)
