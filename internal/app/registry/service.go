// Package registry manages the contest catalog (positions, colleges,
// partylists) and the candidacy application workflow.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/campusvote/halalan/internal/domain"
	"github.com/campusvote/halalan/internal/platform/ids"
	"github.com/campusvote/halalan/internal/platform/logger"
	"github.com/campusvote/halalan/internal/platform/metrics"
)

var (
	ErrPositionInvalid    = errors.New("position invalid")
	ErrPositionNotFound   = errors.New("position not found")
	ErrCollegeInvalid     = errors.New("college invalid")
	ErrPartylistInvalid   = errors.New("partylist invalid")
	ErrApplicationInvalid = errors.New("application invalid")
	ErrProfileNotFound    = errors.New("profile not found")
)

// CandidateRole is assigned to a profile once any application of theirs
// is approved.
const CandidateRole = "candidate"

type Service struct {
	positions   domain.PositionRepository
	colleges    domain.CollegeRepository
	partylists  domain.PartylistRepository
	candidacies domain.CandidacyRepository
	profiles    domain.ProfileRepository
	elections   domain.ElectionRepository
	store       domain.ObjectStore
	tasks       domain.TaskQueue
	clock       domain.Clock
	ids         *ids.Generator

	// adminRecipient receives the "new application" notification; empty
	// disables it.
	adminRecipient domain.ProfileID
}

func NewService(
	positions domain.PositionRepository,
	colleges domain.CollegeRepository,
	partylists domain.PartylistRepository,
	candidacies domain.CandidacyRepository,
	profiles domain.ProfileRepository,
	elections domain.ElectionRepository,
	store domain.ObjectStore,
	tasks domain.TaskQueue,
	clock domain.Clock,
	idsGen *ids.Generator,
	adminRecipient domain.ProfileID,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		positions:      positions,
		colleges:       colleges,
		partylists:     partylists,
		candidacies:    candidacies,
		profiles:       profiles,
		elections:      elections,
		store:          store,
		tasks:          tasks,
		clock:          clock,
		ids:            idsGen,
		adminRecipient: adminRecipient,
	}
}

// --- positions ---

func (s *Service) Positions(ctx context.Context) ([]domain.Position, error) {
	return s.positions.List(ctx)
}

func (s *Service) PositionByID(ctx context.Context, id domain.PositionID) (domain.Position, error) {
	p, err := s.positions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Position{}, ErrPositionNotFound
		}
		return domain.Position{}, err
	}
	return p, nil
}

func (s *Service) CreatePosition(ctx context.Context, p domain.Position) (domain.Position, error) {
	if strings.TrimSpace(p.Title) == "" {
		return domain.Position{}, fmt.Errorf("%w: title required", ErrPositionInvalid)
	}
	if p.MaxCandidate <= 0 {
		p.MaxCandidate = 1
	}

	p.ID = domain.PositionID(s.ids.New())
	p.College = nil
	if err := s.positions.Create(ctx, p); err != nil {
		return domain.Position{}, err
	}
	return p, nil
}

func (s *Service) UpdatePosition(ctx context.Context, p domain.Position) error {
	if p.ID == "" {
		return fmt.Errorf("%w: id required", ErrPositionInvalid)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title required", ErrPositionInvalid)
	}

	if err := s.positions.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrPositionNotFound
		}
		return err
	}
	return nil
}

func (s *Service) DeletePosition(ctx context.Context, id domain.PositionID) error {
	if err := s.positions.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrPositionNotFound
		}
		return err
	}
	return nil
}

// --- colleges ---

func (s *Service) Colleges(ctx context.Context) ([]domain.College, error) {
	return s.colleges.List(ctx)
}

// CreateCollege stores the college and, when logo is non-nil, uploads
// the image first so the row already carries its URL.
func (s *Service) CreateCollege(ctx context.Context, c domain.College, logo io.Reader, logoName string) (domain.College, error) {
	if strings.TrimSpace(c.Name) == "" {
		return domain.College{}, fmt.Errorf("%w: name required", ErrCollegeInvalid)
	}

	c.ID = domain.CollegeID(s.ids.New())
	if logo != nil {
		url, err := s.store.Upload(ctx, fmt.Sprintf("colleges/%s/%s", c.ID, logoName), logo)
		if err != nil {
			return domain.College{}, fmt.Errorf("registry: upload logo: %w", err)
		}
		c.LogoURL = url
	}

	if err := s.colleges.Create(ctx, c); err != nil {
		return domain.College{}, err
	}
	return c, nil
}

func (s *Service) UpdateCollege(ctx context.Context, c domain.College, logo io.Reader, logoName string) error {
	if c.ID == "" {
		return fmt.Errorf("%w: id required", ErrCollegeInvalid)
	}

	if logo != nil {
		url, err := s.store.Upload(ctx, fmt.Sprintf("colleges/%s/%s", c.ID, logoName), logo)
		if err != nil {
			return fmt.Errorf("registry: upload logo: %w", err)
		}
		c.LogoURL = url
	}

	if err := s.colleges.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) DeleteCollege(ctx context.Context, id domain.CollegeID) error {
	return s.colleges.Delete(ctx, id)
}

// --- partylists ---

func (s *Service) Partylists(ctx context.Context) ([]domain.Partylist, error) {
	return s.partylists.List(ctx)
}

func (s *Service) CreatePartylist(ctx context.Context, p domain.Partylist) (domain.Partylist, error) {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Partylist{}, fmt.Errorf("%w: name required", ErrPartylistInvalid)
	}

	p.ID = domain.PartylistID(s.ids.New())
	if err := s.partylists.Create(ctx, p); err != nil {
		return domain.Partylist{}, err
	}
	return p, nil
}

func (s *Service) UpdatePartylist(ctx context.Context, p domain.Partylist) error {
	if p.ID == "" {
		return fmt.Errorf("%w: id required", ErrPartylistInvalid)
	}
	return s.partylists.Update(ctx, p)
}

func (s *Service) DeletePartylist(ctx context.Context, id domain.PartylistID) error {
	return s.partylists.Delete(ctx, id)
}

// --- candidacy applications ---

// Document is one attachment uploaded with an application.
type Document struct {
	Name   string
	Reader io.Reader
}

type ApplyInput struct {
	Identity    domain.Identity
	ElectionID  domain.ElectionID
	PositionID  domain.PositionID
	PartylistID domain.PartylistID
	Platform    string
	Documents   []Document
}

// SubmitApplication files a pending candidacy for the caller. Rejected
// applications do not block re-applying; a pending or approved one for
// the same position does. The admin notification is queued best-effort:
// its failure never fails the submission.
func (s *Service) SubmitApplication(ctx context.Context, in ApplyInput) (domain.CandidacyApplication, error) {
	if in.ElectionID == "" || in.PositionID == "" {
		metrics.ObserveApplicationRequest("invalid")
		return domain.CandidacyApplication{}, fmt.Errorf("%w: election and position required", ErrApplicationInvalid)
	}

	profile, err := s.profiles.FindByUserID(ctx, in.Identity.UserID)
	if err != nil {
		metrics.ObserveApplicationRequest("invalid")
		if errors.Is(err, domain.ErrNotFound) {
			return domain.CandidacyApplication{}, ErrProfileNotFound
		}
		return domain.CandidacyApplication{}, err
	}

	if _, err := s.PositionByID(ctx, in.PositionID); err != nil {
		metrics.ObserveApplicationRequest("invalid")
		return domain.CandidacyApplication{}, err
	}

	active, err := s.candidacies.ExistsActive(ctx, profile.ID, in.ElectionID, in.PositionID)
	if err != nil {
		metrics.ObserveApplicationRequest("error")
		return domain.CandidacyApplication{}, err
	}
	if active {
		metrics.ObserveApplicationRequest("conflict")
		return domain.CandidacyApplication{}, domain.ErrAlreadyApplied
	}

	app := domain.CandidacyApplication{
		ID:          domain.ApplicationID(s.ids.New()),
		ProfileID:   profile.ID,
		ElectionID:  in.ElectionID,
		PositionID:  in.PositionID,
		PartylistID: in.PartylistID,
		Platform:    in.Platform,
		Status:      domain.ApplicationPending,
		AppliedAt:   s.clock.Now(),
	}

	for _, doc := range in.Documents {
		url, err := s.store.Upload(ctx, fmt.Sprintf("applications/%s/%s", app.ID, doc.Name), doc.Reader)
		if err != nil {
			metrics.ObserveApplicationRequest("error")
			return domain.CandidacyApplication{}, fmt.Errorf("registry: upload document: %w", err)
		}
		app.DocumentURLs = append(app.DocumentURLs, url)
	}

	if err := s.candidacies.Create(ctx, app); err != nil {
		metrics.ObserveApplicationRequest("error")
		return domain.CandidacyApplication{}, err
	}
	metrics.ObserveApplicationRequest("accepted")

	if s.adminRecipient != "" {
		s.enqueue(ctx, domain.Task{
			ID:         s.ids.New(),
			Kind:       domain.TaskNotify,
			EnqueuedAt: s.clock.Now(),
			Notification: &domain.NotificationTask{
				ActorID:     profile.ID,
				RecipientID: s.adminRecipient,
				Title:       "New candidacy application",
				Message:     fmt.Sprintf("%s %s applied for a position", profile.FirstName, profile.LastName),
				Type:        "application",
			},
		})
	}

	return app, nil
}

// HasUserApplied reports whether the caller holds a pending or approved
// application for the position. Rejected rows report false.
func (s *Service) HasUserApplied(ctx context.Context, identity domain.Identity, electionID domain.ElectionID, positionID domain.PositionID) (bool, error) {
	profile, err := s.profiles.FindByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.candidacies.ExistsActive(ctx, profile.ID, electionID, positionID)
}

// UpdateApplicationStatus moves an application between pending, approved
// and rejected. Approval queues a role promotion for the applicant;
// queueing failure is logged, not surfaced.
func (s *Service) UpdateApplicationStatus(ctx context.Context, id domain.ApplicationID, status domain.ApplicationStatus) error {
	switch status {
	case domain.ApplicationPending, domain.ApplicationApproved, domain.ApplicationRejected:
	default:
		return fmt.Errorf("%w: unknown status %d", ErrApplicationInvalid, status)
	}

	app, err := s.candidacies.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.candidacies.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	if status == domain.ApplicationApproved {
		s.enqueue(ctx, domain.Task{
			ID:         s.ids.New(),
			Kind:       domain.TaskPromoteRole,
			EnqueuedAt: s.clock.Now(),
			Promotion: &domain.PromotionTask{
				ProfileID: app.ProfileID,
				Role:      CandidateRole,
			},
		})
	}

	return nil
}

func (s *Service) CancelApplication(ctx context.Context, identity domain.Identity, id domain.ApplicationID) error {
	profile, err := s.profiles.FindByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}

	app, err := s.candidacies.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if app.ProfileID != profile.ID {
		return fmt.Errorf("%w: not the applicant", ErrApplicationInvalid)
	}

	return s.candidacies.Delete(ctx, id)
}

func (s *Service) ApplicationsByElection(ctx context.Context, electionID domain.ElectionID, status *domain.ApplicationStatus) ([]domain.CandidacyApplication, error) {
	return s.candidacies.ListByElection(ctx, electionID, status)
}

// UserApplications returns the caller's applications restricted to the
// current elections.
func (s *Service) UserApplications(ctx context.Context, identity domain.Identity) ([]domain.CandidacyApplication, error) {
	profile, err := s.profiles.FindByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	current, err := s.elections.ListCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return nil, nil
	}

	electionIDs := make([]domain.ElectionID, len(current))
	for i, e := range current {
		electionIDs[i] = e.ID
	}
	return s.candidacies.ListByProfileAndElections(ctx, profile.ID, electionIDs)
}

func (s *Service) enqueue(ctx context.Context, task domain.Task) {
	if s.tasks == nil {
		return
	}
	if err := s.tasks.Publish(ctx, task); err != nil {
		logger.Error("registry: enqueue task failed",
			"kind", string(task.Kind),
			"error", err,
		)
	}
}
