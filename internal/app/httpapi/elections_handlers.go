package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/campusvote/halalan/internal/app/elections"
	"github.com/campusvote/halalan/internal/domain"
)

type createElectionRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

func (a *API) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	var req createElectionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", elections.ErrElectionInvalid, err))
		return
	}

	e, err := a.elections.Create(r.Context(), elections.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (a *API) handleListElections(w http.ResponseWriter, r *http.Request) {
	list, err := a.elections.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *API) handleCurrentElections(w http.ResponseWriter, r *http.Request) {
	list, err := a.elections.Current(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *API) handleGetElection(w http.ResponseWriter, r *http.Request) {
	e, err := a.elections.GetByID(r.Context(), domain.ElectionID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

type updateElectionStatusRequest struct {
	Status    domain.ElectionStatus `json:"status"`
	IsCurrent *bool                 `json:"is_current,omitempty"`
}

func (a *API) handleUpdateElectionStatus(w http.ResponseWriter, r *http.Request) {
	var req updateElectionStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", elections.ErrElectionInvalid, err))
		return
	}

	id := domain.ElectionID(r.PathValue("id"))
	if err := a.elections.UpdateStatus(r.Context(), id, req.Status, req.IsCurrent); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type extendEndDateRequest struct {
	EndDate time.Time `json:"end_date"`
}

func (a *API) handleExtendEndDate(w http.ResponseWriter, r *http.Request) {
	var req extendEndDateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", elections.ErrElectionInvalid, err))
		return
	}

	id := domain.ElectionID(r.PathValue("id"))
	if err := a.elections.ExtendEndDate(r.Context(), id, req.EndDate); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleForceEnd(w http.ResponseWriter, r *http.Request) {
	id := domain.ElectionID(r.PathValue("id"))
	if err := a.elections.ForceEnd(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
