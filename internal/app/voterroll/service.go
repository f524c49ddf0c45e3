// Package voterroll manages the per-election list of eligible voters,
// including the bulk import used for CSV uploads.
package voterroll

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/campusvote/halalan/internal/domain"
	"github.com/campusvote/halalan/internal/platform/ids"
	"github.com/campusvote/halalan/internal/platform/metrics"
)

var (
	ErrVoterInvalid  = errors.New("voter invalid")
	ErrVoterNotFound = errors.New("voter not found")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Service struct {
	voters domain.VoterRepository
	clock  domain.Clock
	ids    *ids.Generator
}

func NewService(voters domain.VoterRepository, clock domain.Clock, idsGen *ids.Generator) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		voters: voters,
		clock:  clock,
		ids:    idsGen,
	}
}

// ImportRow is one candidate entry from an upload.
type ImportRow struct {
	Email    string
	FullName string
	College  string
	SchoolID string
}

// ImportResult reports how many rows actually landed in the roll.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import adds rows to an election's roll. Emails are normalized
// (trimmed, lowercased) and validated; rows that are malformed, already
// registered, or duplicated within the batch are counted as skipped. The
// survivors go in as a single bulk insert so a partial import never
// happens.
func (s *Service) Import(ctx context.Context, electionID domain.ElectionID, rows []ImportRow) (ImportResult, error) {
	if electionID == "" {
		return ImportResult{}, fmt.Errorf("%w: election id required", ErrVoterInvalid)
	}

	existing, err := s.voters.ListEmails(ctx, electionID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("voterroll: list registered emails: %w", err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}

	var result ImportResult
	entries := make([]domain.VoterRollEntry, 0, len(rows))
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Email))
		if email == "" || !emailPattern.MatchString(email) {
			result.Skipped++
			continue
		}
		if _, dup := seen[email]; dup {
			result.Skipped++
			continue
		}
		seen[email] = struct{}{}

		entries = append(entries, domain.VoterRollEntry{
			ID:         domain.VoterID(s.ids.New()),
			ElectionID: electionID,
			RegEmail:   email,
			FullName:   strings.TrimSpace(row.FullName),
			College:    strings.TrimSpace(row.College),
			SchoolID:   strings.TrimSpace(row.SchoolID),
			CreatedAt:  s.clock.Now(),
		})
	}

	if len(entries) > 0 {
		if err := s.voters.BulkCreate(ctx, entries); err != nil {
			// A conflict here means the roll changed between the snapshot
			// and the insert; the whole batch is rolled back.
			if errors.Is(err, domain.ErrDuplicateEmail) {
				return ImportResult{}, domain.ErrDuplicateEmail
			}
			return ImportResult{}, fmt.Errorf("voterroll: bulk insert: %w", err)
		}
		result.Imported = len(entries)
	}

	metrics.AddImportedRows(result.Imported)
	metrics.AddSkippedRows(result.Skipped)
	return result, nil
}

func (s *Service) Voters(ctx context.Context, electionID domain.ElectionID) ([]domain.VoterRollEntry, error) {
	return s.voters.ListByElection(ctx, electionID)
}

// UpdateVoter rewrites the mutable fields of one roll entry.
func (s *Service) UpdateVoter(ctx context.Context, entry domain.VoterRollEntry) error {
	if entry.ID == "" || entry.ElectionID == "" {
		return fmt.Errorf("%w: id and election id required", ErrVoterInvalid)
	}

	entry.RegEmail = strings.ToLower(strings.TrimSpace(entry.RegEmail))
	if !emailPattern.MatchString(entry.RegEmail) {
		return fmt.Errorf("%w: malformed email", ErrVoterInvalid)
	}

	if err := s.voters.Update(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrVoterNotFound
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Service) DeleteByIDs(ctx context.Context, electionID domain.ElectionID, voterIDs []domain.VoterID) (int64, error) {
	if len(voterIDs) == 0 {
		return 0, nil
	}
	return s.voters.DeleteByIDs(ctx, electionID, voterIDs)
}

// DeleteAll clears the whole roll for one election.
func (s *Service) DeleteAll(ctx context.Context, electionID domain.ElectionID) (int64, error) {
	if electionID == "" {
		return 0, fmt.Errorf("%w: election id required", ErrVoterInvalid)
	}
	return s.voters.DeleteByElection(ctx, electionID)
}

// IsRegistered checks a normalized email against the roll.
func (s *Service) IsRegistered(ctx context.Context, electionID domain.ElectionID, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}
	return s.voters.EmailRegistered(ctx, electionID, email)
}
