package httpapi

import (
	"fmt"
	"net/http"

	"github.com/campusvote/halalan/internal/app/elections"
	"github.com/campusvote/halalan/internal/app/voterroll"
	"github.com/campusvote/halalan/internal/app/voting"
	"github.com/campusvote/halalan/internal/domain"
)

// --- voter roll ---

type importVotersRequest struct {
	Voters []struct {
		Email    string `json:"email"`
		FullName string `json:"fullname"`
		College  string `json:"college"`
		SchoolID string `json:"school_id"`
	} `json:"voters"`
}

func (a *API) handleImportVoters(w http.ResponseWriter, r *http.Request) {
	var req importVotersRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", voterroll.ErrVoterInvalid, err))
		return
	}

	rows := make([]voterroll.ImportRow, len(req.Voters))
	for i, v := range req.Voters {
		rows[i] = voterroll.ImportRow{
			Email:    v.Email,
			FullName: v.FullName,
			College:  v.College,
			SchoolID: v.SchoolID,
		}
	}

	result, err := a.voters.Import(r.Context(), domain.ElectionID(r.PathValue("id")), rows)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleListVoters(w http.ResponseWriter, r *http.Request) {
	list, err := a.voters.Voters(r.Context(), domain.ElectionID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

type updateVoterRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullname"`
	College  string `json:"college"`
	SchoolID string `json:"school_id"`
}

func (a *API) handleUpdateVoter(w http.ResponseWriter, r *http.Request) {
	var req updateVoterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", voterroll.ErrVoterInvalid, err))
		return
	}

	err := a.voters.UpdateVoter(r.Context(), domain.VoterRollEntry{
		ID:         domain.VoterID(r.PathValue("voterID")),
		ElectionID: domain.ElectionID(r.PathValue("id")),
		RegEmail:   req.Email,
		FullName:   req.FullName,
		College:    req.College,
		SchoolID:   req.SchoolID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type deleteVotersRequest struct {
	// IDs empty plus All true clears the whole roll.
	IDs []domain.VoterID `json:"ids"`
	All bool             `json:"all"`
}

func (a *API) handleDeleteVoters(w http.ResponseWriter, r *http.Request) {
	var req deleteVotersRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", voterroll.ErrVoterInvalid, err))
		return
	}

	electionID := domain.ElectionID(r.PathValue("id"))
	var (
		deleted int64
		err     error
	)
	if req.All {
		deleted, err = a.voters.DeleteAll(r.Context(), electionID)
	} else {
		deleted, err = a.voters.DeleteByIDs(r.Context(), electionID, req.IDs)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// --- voting ---

func (a *API) handleEligibility(w http.ResponseWriter, r *http.Request) {
	eligible, err := a.voting.IsEligible(r.Context(), identityFrom(r), domain.ElectionID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"eligible": eligible})
}

func (a *API) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	voted, err := a.voting.HasCurrentUserVoted(r.Context(), identityFrom(r), domain.ElectionID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"has_voted": voted})
}

type submitVoteRequest struct {
	CandidateID domain.ApplicationID `json:"candidate_id"`
}

// handleSubmitVote is the full ballot flow: the election must be active,
// the caller must be on the roll, then the vote goes in. The unique
// index downstairs still backstops double submissions that race these
// checks.
func (a *API) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	var req submitVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", voting.ErrVoteInvalid, err))
		return
	}

	identity := identityFrom(r)
	electionID := domain.ElectionID(r.PathValue("id"))

	election, err := a.elections.GetByID(r.Context(), electionID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !elections.IsActive(election) {
		respondError(w, fmt.Errorf("%w: election not accepting votes", voting.ErrVoteInvalid))
		return
	}

	eligible, err := a.voting.IsEligible(r.Context(), identity, electionID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !eligible {
		respondError(w, voting.ErrNotEligible)
		return
	}

	vote, err := a.voting.SubmitUserVote(r.Context(), identity, electionID, req.CandidateID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, vote)
}

func (a *API) handleListVotes(w http.ResponseWriter, r *http.Request) {
	list, err := a.voting.VotesByElection(r.Context(), domain.ElectionID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *API) handleUserVotes(w http.ResponseWriter, r *http.Request) {
	list, err := a.voting.UserVotes(r.Context(), identityFrom(r), domain.ElectionID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	if list == nil {
		list = []domain.BallotDetail{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *API) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := a.voting.Statistics(r.Context(), domain.ElectionID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (a *API) handleLiveTally(w http.ResponseWriter, r *http.Request) {
	tally, err := a.voting.LiveTally(r.Context(), domain.ElectionID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tally)
}

func (a *API) handleVotesByCandidate(w http.ResponseWriter, r *http.Request) {
	list, err := a.voting.VotesByCandidate(r.Context(), domain.ApplicationID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// --- notifications ---

func (a *API) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := a.notify.List(r.Context(), identityFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *API) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := a.notify.MarkRead(r.Context(), domain.NotificationID(r.PathValue("id"))); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	updated, err := a.notify.MarkAllRead(r.Context(), identityFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (a *API) handleDeleteReadNotifications(w http.ResponseWriter, r *http.Request) {
	deleted, err := a.notify.DeleteRead(r.Context(), identityFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
