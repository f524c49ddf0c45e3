package domain

import (
	"time"
)

type (
	ElectionID     string
	PositionID     string
	CollegeID      string
	PartylistID    string
	ProfileID      string
	ApplicationID  string
	VoterID        string
	VoteID         string
	NotificationID string
)

// ElectionStatus follows the lifecycle upcoming -> ongoing -> completed.
type ElectionStatus string

const (
	ElectionUpcoming  ElectionStatus = "upcoming"
	ElectionOngoing   ElectionStatus = "ongoing"
	ElectionCompleted ElectionStatus = "completed"
)

// ApplicationStatus uses the numeric codes stored in the datastore.
type ApplicationStatus int

const (
	ApplicationPending  ApplicationStatus = 0
	ApplicationApproved ApplicationStatus = 1
	ApplicationRejected ApplicationStatus = 2
)

type Election struct {
	ID          ElectionID     `gorm:"column:id;type:char(26);primaryKey"`
	Title       string         `gorm:"column:title;type:text;not null"`
	Description string         `gorm:"column:description;type:text"`
	StartDate   time.Time      `gorm:"column:start_date;not null"`
	EndDate     time.Time      `gorm:"column:end_date;not null"`
	Status      ElectionStatus `gorm:"column:status;type:text;not null"`
	IsCurrent   bool           `gorm:"column:is_current;not null;default:false;index"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

type Position struct {
	ID             PositionID `gorm:"column:id;type:char(26);primaryKey"`
	Title          string     `gorm:"column:title;type:text;not null"`
	Description    string     `gorm:"column:description;type:text"`
	Order          int        `gorm:"column:display_order;not null;default:0"`
	MaxCandidate   int        `gorm:"column:max_candidate;not null;default:1"`
	CollegeCanVote CollegeID  `gorm:"column:college_can_vote;type:char(26)"`
	College        *College   `gorm:"foreignKey:CollegeCanVote;references:ID"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type College struct {
	ID        CollegeID `gorm:"column:id;type:char(26);primaryKey"`
	Name      string    `gorm:"column:college_name;type:text;not null"`
	Alias     string    `gorm:"column:alias;type:text"`
	LogoURL   string    `gorm:"column:college_logo;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type Partylist struct {
	ID          PartylistID `gorm:"column:id;type:char(26);primaryKey"`
	Name        string      `gorm:"column:name;type:text;not null"`
	Description string      `gorm:"column:description;type:text"`
	Platform    string      `gorm:"column:platform;type:text"`
	DateFounded time.Time   `gorm:"column:date_founded"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// UserProfile mirrors the profile row kept alongside the external auth
// account. UserID holds the opaque identifier issued by the auth provider.
type UserProfile struct {
	ID           ProfileID `gorm:"column:id;type:char(26);primaryKey"`
	UserID       string    `gorm:"column:user_id;type:text;not null;uniqueIndex"`
	FirstName    string    `gorm:"column:first_name;type:text"`
	MiddleName   string    `gorm:"column:middle_name;type:text"`
	LastName     string    `gorm:"column:last_name;type:text"`
	SchoolNumber string    `gorm:"column:school_number;type:text"`
	Email        string    `gorm:"column:email;type:text"`
	College      string    `gorm:"column:college;type:text"`
	Role         string    `gorm:"column:role;type:text"`
	AvatarURL    string    `gorm:"column:avatar_url;type:text"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type CandidacyApplication struct {
	ID           ApplicationID     `gorm:"column:id;type:char(26);primaryKey"`
	ProfileID    ProfileID         `gorm:"column:user_id;type:char(26);not null;index"`
	ElectionID   ElectionID        `gorm:"column:election_id;type:char(26);not null;index"`
	PositionID   PositionID        `gorm:"column:position_id;type:char(26);not null;index"`
	PartylistID  PartylistID       `gorm:"column:partylist_id;type:char(26)"`
	Platform     string            `gorm:"column:platform;type:text"`
	DocumentURLs []string          `gorm:"column:document_urls;type:text;serializer:json"`
	Status       ApplicationStatus `gorm:"column:status;not null;default:0"`
	AppliedAt    time.Time         `gorm:"column:applied_at;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}

type VoterRollEntry struct {
	ID         VoterID    `gorm:"column:id;type:char(26);primaryKey"`
	ElectionID ElectionID `gorm:"column:election_id;type:char(26);not null;uniqueIndex:idx_voters_election_email,priority:1"`
	RegEmail   string     `gorm:"column:reg_email;type:text;not null;uniqueIndex:idx_voters_election_email,priority:2"`
	FullName   string     `gorm:"column:fullname;type:text"`
	College    string     `gorm:"column:college;type:text"`
	SchoolID   string     `gorm:"column:school_id;type:text"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Vote is the single ballot a voter casts for one candidate. The unique
// index on (election_id, voter_id) is what actually enforces
// one-vote-per-voter; the service-level check only produces nicer errors.
type Vote struct {
	ID          VoteID        `gorm:"column:id;type:char(26);primaryKey"`
	ElectionID  ElectionID    `gorm:"column:election_id;type:char(26);not null;uniqueIndex:idx_votes_election_voter,priority:1"`
	CandidateID ApplicationID `gorm:"column:candidate_id;type:char(26);not null;index"`
	VoterID     ProfileID     `gorm:"column:voter_id;type:char(26);not null;uniqueIndex:idx_votes_election_voter,priority:2"`
	CreatedAt   time.Time     `gorm:"column:created_at;not null"`
}

type Notification struct {
	ID          NotificationID `gorm:"column:id;type:char(26);primaryKey"`
	ActorID     ProfileID      `gorm:"column:user_id;type:char(26)"`
	RecipientID ProfileID      `gorm:"column:recipient_id;type:char(26);not null;index"`
	Title       string         `gorm:"column:title;type:text;not null"`
	Message     string         `gorm:"column:message;type:text;not null"`
	Type        string         `gorm:"column:type;type:text"`
	Link        string         `gorm:"column:link;type:text"`
	IsRead      bool           `gorm:"column:is_read;not null;default:false;index"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// Identity is the authenticated caller as reported by the upstream auth
// collaborator. It is treated as opaque, read-only input.
type Identity struct {
	UserID string
	Email  string
}

// ApprovedCandidate is the joined row the tally is seeded from.
type ApprovedCandidate struct {
	ID                  ApplicationID
	PositionID          PositionID
	PositionTitle       string
	PositionDescription string
	PositionOrder       int
	FirstName           string
	LastName            string
	AvatarURL           string
}

type CandidateTally struct {
	ID        ApplicationID `json:"id"`
	Name      string        `json:"name"`
	AvatarURL string        `json:"avatar_url,omitempty"`
	VoteCount int64         `json:"vote_count"`
}

type PositionTally struct {
	ID          PositionID       `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Order       int              `json:"order"`
	Candidates  []CandidateTally `json:"candidates"`
}

// BallotDetail is a cast vote joined with candidate and position data.
type BallotDetail struct {
	VoteID        VoteID        `json:"id"`
	ElectionID    ElectionID    `json:"election_id"`
	CandidateID   ApplicationID `json:"candidate_id"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	PositionID    PositionID    `json:"position_id"`
	PositionTitle string        `json:"position_title"`
	PositionOrder int           `json:"position_order"`
	CastAt        time.Time     `json:"created_at"`
}

// TaskKind identifies a queued best-effort side effect.
type TaskKind string

const (
	TaskNotify      TaskKind = "notification"
	TaskPromoteRole TaskKind = "promote_role"
)

// Task is the payload published to the side-effect queue. Exactly one of
// Notification/Promotion is set, matching Kind.
type Task struct {
	ID           string            `json:"id"`
	Kind         TaskKind          `json:"kind"`
	Attempts     int               `json:"attempts"`
	EnqueuedAt   time.Time         `json:"enqueued_at"`
	Notification *NotificationTask `json:"notification,omitempty"`
	Promotion    *PromotionTask    `json:"promotion,omitempty"`
}

type NotificationTask struct {
	ActorID     ProfileID `json:"actor_id"`
	RecipientID ProfileID `json:"recipient_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Link        string    `json:"link,omitempty"`
}

type PromotionTask struct {
	ProfileID ProfileID `json:"profile_id"`
	Role      string    `json:"role"`
}

func (Election) TableName() string { return "elections" }

func (Position) TableName() string { return "positions" }

func (College) TableName() string { return "colleges" }

func (Partylist) TableName() string { return "partylists" }

func (UserProfile) TableName() string { return "user_profile" }

func (CandidacyApplication) TableName() string { return "candidacy_application" }

func (VoterRollEntry) TableName() string { return "voters_list" }

func (Vote) TableName() string { return "votes" }

func (Notification) TableName() string { return "notification" }
