package domain

import (
	"context"
	"io"
	"time"
)

type ElectionRepository interface {
	// CreateCurrent clears is_current on every other election and inserts
	// the new one inside a single transaction.
	CreateCurrent(ctx context.Context, e Election) error
	List(ctx context.Context) ([]Election, error)
	FindByID(ctx context.Context, id ElectionID) (Election, error)
	ListCurrent(ctx context.Context) ([]Election, error)
	UpdateStatus(ctx context.Context, id ElectionID, status ElectionStatus, isCurrent *bool) error
	UpdateEndDate(ctx context.Context, id ElectionID, endDate time.Time) error
}

type PositionRepository interface {
	List(ctx context.Context) ([]Position, error)
	FindByID(ctx context.Context, id PositionID) (Position, error)
	Create(ctx context.Context, p Position) error
	Update(ctx context.Context, p Position) error
	Delete(ctx context.Context, id PositionID) error
}

type CollegeRepository interface {
	List(ctx context.Context) ([]College, error)
	Create(ctx context.Context, c College) error
	Update(ctx context.Context, c College) error
	Delete(ctx context.Context, id CollegeID) error
}

type PartylistRepository interface {
	List(ctx context.Context) ([]Partylist, error)
	Create(ctx context.Context, p Partylist) error
	Update(ctx context.Context, p Partylist) error
	Delete(ctx context.Context, id PartylistID) error
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (UserProfile, error)
	FindByID(ctx context.Context, id ProfileID) (UserProfile, error)
	Create(ctx context.Context, p UserProfile) error
	UpdateRole(ctx context.Context, id ProfileID, role string) error
}

type CandidacyRepository interface {
	Create(ctx context.Context, a CandidacyApplication) error
	FindByID(ctx context.Context, id ApplicationID) (CandidacyApplication, error)
	// ListByElection filters by status when status is non-nil; newest first.
	ListByElection(ctx context.Context, electionID ElectionID, status *ApplicationStatus) ([]CandidacyApplication, error)
	ListByProfileAndElections(ctx context.Context, profileID ProfileID, electionIDs []ElectionID) ([]CandidacyApplication, error)
	// ExistsActive reports whether a pending or approved application exists
	// for the triple.
	ExistsActive(ctx context.Context, profileID ProfileID, electionID ElectionID, positionID PositionID) (bool, error)
	UpdateStatus(ctx context.Context, id ApplicationID, status ApplicationStatus) error
	Delete(ctx context.Context, id ApplicationID) error
	ListApproved(ctx context.Context, electionID ElectionID) ([]ApprovedCandidate, error)
}

type VoterRepository interface {
	ListByElection(ctx context.Context, electionID ElectionID) ([]VoterRollEntry, error)
	ListEmails(ctx context.Context, electionID ElectionID) ([]string, error)
	BulkCreate(ctx context.Context, entries []VoterRollEntry) error
	Update(ctx context.Context, entry VoterRollEntry) error
	DeleteByIDs(ctx context.Context, electionID ElectionID, ids []VoterID) (int64, error)
	DeleteByElection(ctx context.Context, electionID ElectionID) (int64, error)
	EmailRegistered(ctx context.Context, electionID ElectionID, email string) (bool, error)
}

type VoteRepository interface {
	// Create returns ErrAlreadyVoted when the (election, voter) unique
	// index rejects the insert.
	Create(ctx context.Context, v Vote) error
	HasVoted(ctx context.Context, voterID ProfileID, electionID ElectionID) (bool, error)
	CountByCandidate(ctx context.Context, electionID ElectionID) (map[ApplicationID]int64, error)
	ListByElection(ctx context.Context, electionID ElectionID) ([]Vote, error)
	ListByCandidate(ctx context.Context, candidateID ApplicationID) ([]Vote, error)
	ListByVoter(ctx context.Context, voterID ProfileID, electionID ElectionID) ([]BallotDetail, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n Notification) error
	ListByRecipient(ctx context.Context, recipientID ProfileID) ([]Notification, error)
	MarkRead(ctx context.Context, id NotificationID) error
	MarkAllRead(ctx context.Context, recipientID ProfileID) (int64, error)
	DeleteRead(ctx context.Context, recipientID ProfileID) (int64, error)
}

// TaskQueue carries best-effort side effects out of the request path.
type TaskQueue interface {
	Publish(ctx context.Context, task Task) error
	PublishDead(ctx context.Context, task Task) error
	Consume(ctx context.Context, handler func(context.Context, Task) error) error
}

// TallyCounter keeps cheap live counters next to the durable vote rows.
type TallyCounter interface {
	Incr(ctx context.Context, key string, delta int64) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	GetAll(ctx context.Context, keys []string) (map[string]int64, error)
}

// ObjectStore persists uploaded attachments and returns a public URL.
type ObjectStore interface {
	Upload(ctx context.Context, path string, r io.Reader) (string, error)
}

// VoteLimiter throttles ballot submissions per voter.
type VoteLimiter interface {
	Validate(ctx context.Context, v Vote) error
}

type Clock interface {
	Now() time.Time
}
