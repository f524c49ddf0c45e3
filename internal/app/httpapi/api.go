// Package httpapi wires the application services to the HTTP surface.
// Authentication happens upstream; the caller identity arrives in the
// X-User-Id and X-User-Email headers.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campusvote/halalan/internal/app/elections"
	"github.com/campusvote/halalan/internal/app/notify"
	"github.com/campusvote/halalan/internal/app/registry"
	"github.com/campusvote/halalan/internal/app/voterroll"
	"github.com/campusvote/halalan/internal/app/voting"
	"github.com/campusvote/halalan/internal/domain"
	"github.com/campusvote/halalan/internal/platform/logger"
	"github.com/campusvote/halalan/internal/platform/ratelimit"
)

const (
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"
)

type API struct {
	elections *elections.Service
	registry  *registry.Service
	voters    *voterroll.Service
	voting    *voting.Service
	notify    *notify.Service
}

func New(
	electionsSvc *elections.Service,
	registrySvc *registry.Service,
	votersSvc *voterroll.Service,
	votingSvc *voting.Service,
	notifySvc *notify.Service,
) *API {
	return &API{
		elections: electionsSvc,
		registry:  registrySvc,
		voters:    votersSvc,
		voting:    votingSvc,
		notify:    notifySvc,
	}
}

// Register mounts every route on the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/elections", a.handleCreateElection)
	mux.HandleFunc("GET /v1/elections", a.handleListElections)
	mux.HandleFunc("GET /v1/elections/current", a.handleCurrentElections)
	mux.HandleFunc("GET /v1/elections/{id}", a.handleGetElection)
	mux.HandleFunc("PATCH /v1/elections/{id}/status", a.handleUpdateElectionStatus)
	mux.HandleFunc("PATCH /v1/elections/{id}/end-date", a.handleExtendEndDate)
	mux.HandleFunc("POST /v1/elections/{id}/force-end", a.handleForceEnd)

	mux.HandleFunc("GET /v1/positions", a.handleListPositions)
	mux.HandleFunc("POST /v1/positions", a.handleCreatePosition)
	mux.HandleFunc("GET /v1/positions/{id}", a.handleGetPosition)
	mux.HandleFunc("PUT /v1/positions/{id}", a.handleUpdatePosition)
	mux.HandleFunc("DELETE /v1/positions/{id}", a.handleDeletePosition)

	mux.HandleFunc("GET /v1/colleges", a.handleListColleges)
	mux.HandleFunc("POST /v1/colleges", a.handleCreateCollege)
	mux.HandleFunc("PUT /v1/colleges/{id}", a.handleUpdateCollege)
	mux.HandleFunc("DELETE /v1/colleges/{id}", a.handleDeleteCollege)

	mux.HandleFunc("GET /v1/partylists", a.handleListPartylists)
	mux.HandleFunc("POST /v1/partylists", a.handleCreatePartylist)
	mux.HandleFunc("PUT /v1/partylists/{id}", a.handleUpdatePartylist)
	mux.HandleFunc("DELETE /v1/partylists/{id}", a.handleDeletePartylist)

	mux.HandleFunc("POST /v1/elections/{id}/applications", a.handleSubmitApplication)
	mux.HandleFunc("GET /v1/elections/{id}/applications", a.handleListApplications)
	mux.HandleFunc("GET /v1/applications/mine", a.handleUserApplications)
	mux.HandleFunc("GET /v1/applications/check", a.handleHasApplied)
	mux.HandleFunc("PATCH /v1/applications/{id}/status", a.handleUpdateApplicationStatus)
	mux.HandleFunc("DELETE /v1/applications/{id}", a.handleCancelApplication)

	mux.HandleFunc("POST /v1/elections/{id}/voters/import", a.handleImportVoters)
	mux.HandleFunc("GET /v1/elections/{id}/voters", a.handleListVoters)
	mux.HandleFunc("PUT /v1/elections/{id}/voters/{voterID}", a.handleUpdateVoter)
	mux.HandleFunc("DELETE /v1/elections/{id}/voters", a.handleDeleteVoters)

	mux.HandleFunc("GET /v1/elections/{id}/eligibility", a.handleEligibility)
	mux.HandleFunc("GET /v1/elections/{id}/has-voted", a.handleHasVoted)
	mux.HandleFunc("POST /v1/elections/{id}/votes", a.handleSubmitVote)
	mux.HandleFunc("GET /v1/elections/{id}/votes", a.handleListVotes)
	mux.HandleFunc("GET /v1/elections/{id}/votes/mine", a.handleUserVotes)
	mux.HandleFunc("GET /v1/elections/{id}/statistics", a.handleStatistics)
	mux.HandleFunc("GET /v1/elections/{id}/live-tally", a.handleLiveTally)
	mux.HandleFunc("GET /v1/candidates/{id}/votes", a.handleVotesByCandidate)

	mux.HandleFunc("GET /v1/notifications", a.handleListNotifications)
	mux.HandleFunc("PATCH /v1/notifications/{id}/read", a.handleMarkNotificationRead)
	mux.HandleFunc("POST /v1/notifications/read-all", a.handleMarkAllNotificationsRead)
	mux.HandleFunc("DELETE /v1/notifications/read", a.handleDeleteReadNotifications)
}

func identityFrom(r *http.Request) domain.Identity {
	return domain.Identity{
		UserID: r.Header.Get(headerUserID),
		Email:  r.Header.Get(headerUserEmail),
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("httpapi: encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrAlreadyApplied),
		errors.Is(err, domain.ErrDuplicateEmail):
		status = http.StatusConflict
	case errors.Is(err, ratelimit.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, elections.ErrElectionNotFound),
		errors.Is(err, registry.ErrPositionNotFound),
		errors.Is(err, registry.ErrProfileNotFound),
		errors.Is(err, notify.ErrProfileNotFound),
		errors.Is(err, voterroll.ErrVoterNotFound):
		status = http.StatusNotFound
	case errors.Is(err, elections.ErrElectionInvalid),
		errors.Is(err, elections.ErrElectionCompleted),
		errors.Is(err, registry.ErrPositionInvalid),
		errors.Is(err, registry.ErrCollegeInvalid),
		errors.Is(err, registry.ErrPartylistInvalid),
		errors.Is(err, registry.ErrApplicationInvalid),
		errors.Is(err, voterroll.ErrVoterInvalid),
		errors.Is(err, voting.ErrVoteInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, voting.ErrNotEligible):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		logger.Error("httpapi: request failed", "error", err)
		respondJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	respondJSON(w, status, errorBody{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
