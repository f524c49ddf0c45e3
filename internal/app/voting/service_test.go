package voting

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvote/halalan/internal/domain"
	"github.com/campusvote/halalan/internal/platform/ratelimit"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fakeVoteRepo struct {
	votes []domain.Vote
}

func (f *fakeVoteRepo) Create(_ context.Context, v domain.Vote) error {
	for _, existing := range f.votes {
		if existing.ElectionID == v.ElectionID && existing.VoterID == v.VoterID {
			return domain.ErrAlreadyVoted
		}
	}
	f.votes = append(f.votes, v)
	return nil
}

func (f *fakeVoteRepo) HasVoted(_ context.Context, voterID domain.ProfileID, electionID domain.ElectionID) (bool, error) {
	for _, v := range f.votes {
		if v.VoterID == voterID && v.ElectionID == electionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVoteRepo) CountByCandidate(_ context.Context, electionID domain.ElectionID) (map[domain.ApplicationID]int64, error) {
	counts := map[domain.ApplicationID]int64{}
	for _, v := range f.votes {
		if v.ElectionID == electionID {
			counts[v.CandidateID]++
		}
	}
	return counts, nil
}

func (f *fakeVoteRepo) ListByElection(_ context.Context, electionID domain.ElectionID) ([]domain.Vote, error) {
	var out []domain.Vote
	for _, v := range f.votes {
		if v.ElectionID == electionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVoteRepo) ListByCandidate(_ context.Context, candidateID domain.ApplicationID) ([]domain.Vote, error) {
	var out []domain.Vote
	for _, v := range f.votes {
		if v.CandidateID == candidateID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVoteRepo) ListByVoter(_ context.Context, voterID domain.ProfileID, electionID domain.ElectionID) ([]domain.BallotDetail, error) {
	var out []domain.BallotDetail
	for _, v := range f.votes {
		if v.VoterID == voterID && v.ElectionID == electionID {
			out = append(out, domain.BallotDetail{
				VoteID:      v.ID,
				ElectionID:  v.ElectionID,
				CandidateID: v.CandidateID,
				CastAt:      v.CreatedAt,
			})
		}
	}
	return out, nil
}

type fakeVoterRepo struct {
	emails map[string]bool
}

func (f *fakeVoterRepo) ListByElection(context.Context, domain.ElectionID) ([]domain.VoterRollEntry, error) {
	return nil, nil
}

func (f *fakeVoterRepo) ListEmails(context.Context, domain.ElectionID) ([]string, error) {
	return nil, nil
}

func (f *fakeVoterRepo) BulkCreate(context.Context, []domain.VoterRollEntry) error { return nil }

func (f *fakeVoterRepo) Update(context.Context, domain.VoterRollEntry) error { return nil }

func (f *fakeVoterRepo) DeleteByIDs(context.Context, domain.ElectionID, []domain.VoterID) (int64, error) {
	return 0, nil
}

func (f *fakeVoterRepo) DeleteByElection(context.Context, domain.ElectionID) (int64, error) {
	return 0, nil
}

func (f *fakeVoterRepo) EmailRegistered(_ context.Context, electionID domain.ElectionID, email string) (bool, error) {
	return f.emails[fmt.Sprintf("%s|%s", electionID, email)], nil
}

type fakeCandidacyRoster struct {
	roster []domain.ApprovedCandidate
}

func (f *fakeCandidacyRoster) Create(context.Context, domain.CandidacyApplication) error { return nil }

func (f *fakeCandidacyRoster) FindByID(context.Context, domain.ApplicationID) (domain.CandidacyApplication, error) {
	return domain.CandidacyApplication{}, domain.ErrNotFound
}

func (f *fakeCandidacyRoster) ListByElection(context.Context, domain.ElectionID, *domain.ApplicationStatus) ([]domain.CandidacyApplication, error) {
	return nil, nil
}

func (f *fakeCandidacyRoster) ListByProfileAndElections(context.Context, domain.ProfileID, []domain.ElectionID) ([]domain.CandidacyApplication, error) {
	return nil, nil
}

func (f *fakeCandidacyRoster) ExistsActive(context.Context, domain.ProfileID, domain.ElectionID, domain.PositionID) (bool, error) {
	return false, nil
}

func (f *fakeCandidacyRoster) UpdateStatus(context.Context, domain.ApplicationID, domain.ApplicationStatus) error {
	return nil
}

func (f *fakeCandidacyRoster) Delete(context.Context, domain.ApplicationID) error { return nil }

func (f *fakeCandidacyRoster) ListApproved(context.Context, domain.ElectionID) ([]domain.ApprovedCandidate, error) {
	return f.roster, nil
}

type fakeProfileRepo struct {
	profiles []domain.UserProfile
}

func (f *fakeProfileRepo) FindByUserID(_ context.Context, userID string) (domain.UserProfile, error) {
	for _, p := range f.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return domain.UserProfile{}, domain.ErrNotFound
}

func (f *fakeProfileRepo) FindByID(_ context.Context, id domain.ProfileID) (domain.UserProfile, error) {
	for _, p := range f.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.UserProfile{}, domain.ErrNotFound
}

func (f *fakeProfileRepo) Create(_ context.Context, p domain.UserProfile) error {
	f.profiles = append(f.profiles, p)
	return nil
}

func (f *fakeProfileRepo) UpdateRole(context.Context, domain.ProfileID, string) error { return nil }

type fakeTally struct {
	counters map[string]int64
	fail     bool
}

func (f *fakeTally) Incr(_ context.Context, key string, delta int64) (int64, error) {
	if f.fail {
		return 0, fmt.Errorf("tally down")
	}
	if f.counters == nil {
		f.counters = map[string]int64{}
	}
	f.counters[key] += delta
	return f.counters[key], nil
}

func (f *fakeTally) Get(_ context.Context, key string) (int64, error) {
	return f.counters[key], nil
}

func (f *fakeTally) GetAll(_ context.Context, keys []string) (map[string]int64, error) {
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = f.counters[k]
	}
	return out, nil
}

type votingFixture struct {
	svc       *Service
	votes     *fakeVoteRepo
	voters    *fakeVoterRepo
	candidacy *fakeCandidacyRoster
	profiles  *fakeProfileRepo
	tally     *fakeTally
}

func newFixture(t *testing.T) *votingFixture {
	t.Helper()

	f := &votingFixture{
		votes:     &fakeVoteRepo{},
		voters:    &fakeVoterRepo{emails: map[string]bool{}},
		candidacy: &fakeCandidacyRoster{},
		profiles:  &fakeProfileRepo{},
		tally:     &fakeTally{},
	}
	f.profiles.profiles = []domain.UserProfile{{
		ID:     "prof-1",
		UserID: "user-1",
		Email:  "maria@campus.edu",
	}}
	f.svc = NewService(
		f.votes, f.voters, f.candidacy, f.profiles, f.tally,
		ratelimit.NewNoop(),
		fixedClock{now: time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)}, nil,
	)
	return f
}

func TestSubmitVoteRecordsBallotAndCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vote, err := f.svc.SubmitVote(ctx, SubmitInput{
		ElectionID:  "el-1",
		CandidateID: "app-1",
		VoterID:     "prof-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, vote.ID)

	assert.Equal(t, int64(1), f.tally.counters[CounterKeyElectionTotal("el-1")])
	assert.Equal(t, int64(1), f.tally.counters[CounterKeyCandidate("el-1", "app-1")])
}

func TestSubmitVoteDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := SubmitInput{ElectionID: "el-1", CandidateID: "app-1", VoterID: "prof-1"}
	_, err := f.svc.SubmitVote(ctx, in)
	require.NoError(t, err)

	in.CandidateID = "app-2"
	_, err = f.svc.SubmitVote(ctx, in)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	// The failed second submission must not bump the counters.
	assert.Equal(t, int64(1), f.tally.counters[CounterKeyElectionTotal("el-1")])
}

func TestSubmitVoteValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitVote(context.Background(), SubmitInput{ElectionID: "el-1"})
	assert.ErrorIs(t, err, ErrVoteInvalid)
}

func TestSubmitVoteSurvivesTallyFailure(t *testing.T) {
	f := newFixture(t)
	f.tally.fail = true

	_, err := f.svc.SubmitVote(context.Background(), SubmitInput{
		ElectionID:  "el-1",
		CandidateID: "app-1",
		VoterID:     "prof-1",
	})
	assert.NoError(t, err)
}

func TestSubmitUserVoteResolvesProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vote, err := f.svc.SubmitUserVote(ctx, domain.Identity{UserID: "user-1"}, "el-1", "app-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileID("prof-1"), vote.VoterID)

	_, err = f.svc.SubmitUserVote(ctx, domain.Identity{UserID: "stranger"}, "el-1", "app-1")
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestIsEligible(t *testing.T) {
	f := newFixture(t)
	f.voters.emails["el-1|maria@campus.edu"] = true
	ctx := context.Background()

	ok, err := f.svc.IsEligible(ctx, domain.Identity{Email: " Maria@Campus.edu "}, "el-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsEligible(ctx, domain.Identity{Email: "other@campus.edu"}, "el-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.IsEligible(ctx, domain.Identity{}, "el-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasCurrentUserVoted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	voted, err := f.svc.HasCurrentUserVoted(ctx, domain.Identity{UserID: "user-1"}, "el-1")
	require.NoError(t, err)
	assert.False(t, voted)

	_, err = f.svc.SubmitVote(ctx, SubmitInput{ElectionID: "el-1", CandidateID: "app-1", VoterID: "prof-1"})
	require.NoError(t, err)

	voted, err = f.svc.HasCurrentUserVoted(ctx, domain.Identity{UserID: "user-1"}, "el-1")
	require.NoError(t, err)
	assert.True(t, voted)

	// Unknown callers simply have not voted.
	voted, err = f.svc.HasCurrentUserVoted(ctx, domain.Identity{UserID: "stranger"}, "el-1")
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestStatisticsSeedsZeroVoteCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.candidacy.roster = []domain.ApprovedCandidate{
		{ID: "app-1", PositionID: "pos-1", PositionTitle: "President", PositionOrder: 1, FirstName: "maria", LastName: "santos"},
		{ID: "app-2", PositionID: "pos-1", PositionTitle: "President", PositionOrder: 1, FirstName: "JUAN", LastName: "DELA CRUZ"},
		{ID: "app-3", PositionID: "pos-2", PositionTitle: "Secretary", PositionOrder: 2, FirstName: "ana", LastName: "reyes"},
	}

	castVote := func(id, voter, candidate string) {
		_, err := f.svc.SubmitVote(ctx, SubmitInput{
			ElectionID:  "el-1",
			CandidateID: domain.ApplicationID(candidate),
			VoterID:     domain.ProfileID(voter),
		})
		require.NoError(t, err, id)
	}
	castVote("v1", "voter-1", "app-1")
	castVote("v2", "voter-2", "app-1")
	castVote("v3", "voter-3", "app-2")

	stats, err := f.svc.Statistics(ctx, "el-1")
	require.NoError(t, err)
	require.Len(t, stats, 2)

	president := stats[0]
	assert.Equal(t, domain.PositionID("pos-1"), president.ID)
	assert.Equal(t, 1, president.Order)
	require.Len(t, president.Candidates, 2)
	assert.Equal(t, "Maria Santos", president.Candidates[0].Name)
	assert.Equal(t, int64(2), president.Candidates[0].VoteCount)
	assert.Equal(t, "Juan Dela Cruz", president.Candidates[1].Name)
	assert.Equal(t, int64(1), president.Candidates[1].VoteCount)

	// Secretary received no votes but still appears with a zero count.
	secretary := stats[1]
	assert.Equal(t, domain.PositionID("pos-2"), secretary.ID)
	require.Len(t, secretary.Candidates, 1)
	assert.Equal(t, int64(0), secretary.Candidates[0].VoteCount)
}

func TestLiveTallyReadsCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.candidacy.roster = []domain.ApprovedCandidate{
		{ID: "app-1", PositionID: "pos-1"},
	}
	_, err := f.svc.SubmitVote(ctx, SubmitInput{ElectionID: "el-1", CandidateID: "app-1", VoterID: "voter-1"})
	require.NoError(t, err)

	tally, err := f.svc.LiveTally(ctx, "el-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tally[CounterKeyElectionTotal("el-1")])
	assert.Equal(t, int64(1), tally[CounterKeyCandidate("el-1", "app-1")])
}

func TestUserVotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitVote(ctx, SubmitInput{ElectionID: "el-1", CandidateID: "app-1", VoterID: "prof-1"})
	require.NoError(t, err)

	ballots, err := f.svc.UserVotes(ctx, domain.Identity{UserID: "user-1"}, "el-1")
	require.NoError(t, err)
	require.Len(t, ballots, 1)
	assert.Equal(t, domain.ApplicationID("app-1"), ballots[0].CandidateID)

	none, err := f.svc.UserVotes(ctx, domain.Identity{UserID: "stranger"}, "el-1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCandidateNameFormatting(t *testing.T) {
	assert.Equal(t, "Maria Santos", candidateName(" maria ", " santos "))
	assert.Equal(t, "Juan Dela Cruz", candidateName("JUAN", "DELA CRUZ"))
	assert.Equal(t, "Solo", candidateName("solo", ""))
	assert.Equal(t, "", candidateName("  ", ""))
}
