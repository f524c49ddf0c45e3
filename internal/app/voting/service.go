// Package voting implements eligibility checks, ballot submission and
// the tally.
package voting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/campusvote/halalan/internal/domain"
	"github.com/campusvote/halalan/internal/platform/ids"
	"github.com/campusvote/halalan/internal/platform/logger"
	"github.com/campusvote/halalan/internal/platform/metrics"
	"github.com/campusvote/halalan/internal/platform/ratelimit"
)

var (
	ErrVoteInvalid = errors.New("vote invalid")
	ErrNotEligible = errors.New("voter not eligible")
)

type Service struct {
	votes     domain.VoteRepository
	voters    domain.VoterRepository
	candidacy domain.CandidacyRepository
	profiles  domain.ProfileRepository
	tally     domain.TallyCounter
	limiter   domain.VoteLimiter
	clock     domain.Clock
	ids       *ids.Generator
}

func NewService(
	votes domain.VoteRepository,
	voters domain.VoterRepository,
	candidacy domain.CandidacyRepository,
	profiles domain.ProfileRepository,
	tally domain.TallyCounter,
	limiter domain.VoteLimiter,
	clock domain.Clock,
	idsGen *ids.Generator,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if limiter == nil {
		limiter = ratelimit.NewNoop()
	}
	return &Service{
		votes:     votes,
		voters:    voters,
		candidacy: candidacy,
		profiles:  profiles,
		tally:     tally,
		limiter:   limiter,
		clock:     clock,
		ids:       idsGen,
	}
}

// IsEligible checks the caller's email against the voter roll. The email
// comparison is case-insensitive.
func (s *Service) IsEligible(ctx context.Context, identity domain.Identity, electionID domain.ElectionID) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return false, nil
	}
	return s.voters.EmailRegistered(ctx, electionID, email)
}

func (s *Service) HasVoted(ctx context.Context, voterID domain.ProfileID, electionID domain.ElectionID) (bool, error) {
	return s.votes.HasVoted(ctx, voterID, electionID)
}

// HasCurrentUserVoted resolves the caller's profile first; an unknown
// caller simply has not voted.
func (s *Service) HasCurrentUserVoted(ctx context.Context, identity domain.Identity, electionID domain.ElectionID) (bool, error) {
	profile, err := s.profiles.FindByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.votes.HasVoted(ctx, profile.ID, electionID)
}

type SubmitInput struct {
	ElectionID  domain.ElectionID
	CandidateID domain.ApplicationID
	VoterID     domain.ProfileID
}

// SubmitVote records the ballot. Eligibility and election state were
// checked by the caller flow; the unique index on (election, voter) is
// the authority on double voting, so no pre-check happens here. The
// live counters are best-effort and never fail the vote.
func (s *Service) SubmitVote(ctx context.Context, in SubmitInput) (domain.Vote, error) {
	if in.ElectionID == "" || in.CandidateID == "" || in.VoterID == "" {
		metrics.ObserveVoteRequest("invalid")
		return domain.Vote{}, fmt.Errorf("%w: election, candidate and voter required", ErrVoteInvalid)
	}

	v := domain.Vote{
		ID:          domain.VoteID(s.ids.New()),
		ElectionID:  in.ElectionID,
		CandidateID: in.CandidateID,
		VoterID:     in.VoterID,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.limiter.Validate(ctx, v); err != nil {
		if errors.Is(err, ratelimit.ErrRateLimitExceeded) {
			metrics.ObserveVoteRequest("throttled")
			return domain.Vote{}, err
		}
		// A broken limiter must not block the election.
		logger.Error("voting: rate limiter check failed", "error", err)
	}

	if err := s.votes.Create(ctx, v); err != nil {
		if errors.Is(err, domain.ErrAlreadyVoted) {
			metrics.ObserveVoteRequest("duplicate")
			return domain.Vote{}, domain.ErrAlreadyVoted
		}
		metrics.ObserveVoteRequest("error")
		return domain.Vote{}, err
	}
	metrics.ObserveVoteRequest("accepted")

	s.bumpCounters(ctx, v)
	return v, nil
}

// SubmitUserVote resolves the caller's profile and casts their ballot.
func (s *Service) SubmitUserVote(ctx context.Context, identity domain.Identity, electionID domain.ElectionID, candidateID domain.ApplicationID) (domain.Vote, error) {
	profile, err := s.profiles.FindByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveVoteRequest("invalid")
			return domain.Vote{}, ErrNotEligible
		}
		return domain.Vote{}, err
	}
	return s.SubmitVote(ctx, SubmitInput{
		ElectionID:  electionID,
		CandidateID: candidateID,
		VoterID:     profile.ID,
	})
}

func (s *Service) bumpCounters(ctx context.Context, v domain.Vote) {
	if s.tally == nil {
		return
	}
	if _, err := s.tally.Incr(ctx, CounterKeyElectionTotal(v.ElectionID), 1); err != nil {
		logger.Error("voting: bump election counter failed", "error", err)
	}
	if _, err := s.tally.Incr(ctx, CounterKeyCandidate(v.ElectionID, v.CandidateID), 1); err != nil {
		logger.Error("voting: bump candidate counter failed", "error", err)
	}
}

// Statistics builds the authoritative tally from the vote rows, seeded
// with every approved candidate so zero-vote candidates still show up.
// Results are grouped by position and ordered by position order.
func (s *Service) Statistics(ctx context.Context, electionID domain.ElectionID) ([]domain.PositionTally, error) {
	candidates, err := s.candidacy.ListApproved(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("voting: list approved candidates: %w", err)
	}

	counts, err := s.votes.CountByCandidate(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("voting: count votes: %w", err)
	}

	byPosition := make(map[domain.PositionID]*domain.PositionTally)
	var order []domain.PositionID
	for _, c := range candidates {
		pt, ok := byPosition[c.PositionID]
		if !ok {
			pt = &domain.PositionTally{
				ID:          c.PositionID,
				Title:       c.PositionTitle,
				Description: c.PositionDescription,
				Order:       c.PositionOrder,
			}
			byPosition[c.PositionID] = pt
			order = append(order, c.PositionID)
		}

		pt.Candidates = append(pt.Candidates, domain.CandidateTally{
			ID:        c.ID,
			Name:      candidateName(c.FirstName, c.LastName),
			AvatarURL: c.AvatarURL,
			VoteCount: counts[c.ID],
		})
	}

	result := make([]domain.PositionTally, 0, len(order))
	for _, id := range order {
		result = append(result, *byPosition[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})
	return result, nil
}

// UserVotes returns the caller's cast ballots joined with candidate and
// position details.
func (s *Service) UserVotes(ctx context.Context, identity domain.Identity, electionID domain.ElectionID) ([]domain.BallotDetail, error) {
	profile, err := s.profiles.FindByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.votes.ListByVoter(ctx, profile.ID, electionID)
}

func (s *Service) VotesByElection(ctx context.Context, electionID domain.ElectionID) ([]domain.Vote, error) {
	return s.votes.ListByElection(ctx, electionID)
}

func (s *Service) VotesByCandidate(ctx context.Context, candidateID domain.ApplicationID) ([]domain.Vote, error) {
	return s.votes.ListByCandidate(ctx, candidateID)
}

// LiveTally reads the cheap Redis counters for the election and its
// approved candidates. It is advisory; Statistics is the durable count.
func (s *Service) LiveTally(ctx context.Context, electionID domain.ElectionID) (map[string]int64, error) {
	if s.tally == nil {
		return map[string]int64{}, nil
	}

	candidates, err := s.candidacy.ListApproved(ctx, electionID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(candidates)+1)
	keys = append(keys, CounterKeyElectionTotal(electionID))
	for _, c := range candidates {
		keys = append(keys, CounterKeyCandidate(electionID, c.ID))
	}
	return s.tally.GetAll(ctx, keys)
}

// candidateName trims and title-cases each name part.
func candidateName(first, last string) string {
	full := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if full == "" {
		return ""
	}
	parts := strings.Fields(full)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}
