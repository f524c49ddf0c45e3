package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/campusvote/halalan/internal/app/registry"
	"github.com/campusvote/halalan/internal/domain"
)

// multipart uploads are capped at 16 MiB in memory.
const maxUploadMemory = 16 << 20

// --- positions ---

func (a *API) handleListPositions(w http.ResponseWriter, r *http.Request) {
	list, err := a.registry.Positions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *API) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	p, err := a.registry.PositionByID(r.Context(), domain.PositionID(r.PathValue("id")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type positionRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Order          int              `json:"order"`
	MaxCandidate   int              `json:"max_candidate"`
	CollegeCanVote domain.CollegeID `json:"college_can_vote"`
}

func (a *API) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", registry.ErrPositionInvalid, err))
		return
	}

	p, err := a.registry.CreatePosition(r.Context(), domain.Position{
		Title:          req.Title,
		Description:    req.Description,
		Order:          req.Order,
		MaxCandidate:   req.MaxCandidate,
		CollegeCanVote: req.CollegeCanVote,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (a *API) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", registry.ErrPositionInvalid, err))
		return
	}

	err := a.registry.UpdatePosition(r.Context(), domain.Position{
		ID:             domain.PositionID(r.PathValue("id")),
		Title:          req.Title,
		Description:    req.Description,
		Order:          req.Order,
		MaxCandidate:   req.MaxCandidate,
		CollegeCanVote: req.CollegeCanVote,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	if err := a.registry.DeletePosition(r.Context(), domain.PositionID(r.PathValue("id"))); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// --- colleges ---

func (a *API) handleListColleges(w http.ResponseWriter, r *http.Request) {
	list, err := a.registry.Colleges(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// collegeForm reads the multipart body used by create and update. The
// logo part is optional.
func collegeForm(r *http.Request) (domain.College, io.Reader, string, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return domain.College{}, nil, "", fmt.Errorf("%w: %s", registry.ErrCollegeInvalid, err)
	}

	c := domain.College{
		Name:  r.FormValue("name"),
		Alias: r.FormValue("alias"),
	}

	file, header, err := r.FormFile("logo")
	if err == http.ErrMissingFile {
		return c, nil, "", nil
	}
	if err != nil {
		return domain.College{}, nil, "", fmt.Errorf("%w: %s", registry.ErrCollegeInvalid, err)
	}
	return c, file, header.Filename, nil
}

func (a *API) handleCreateCollege(w http.ResponseWriter, r *http.Request) {
	c, logo, logoName, err := collegeForm(r)
	if err != nil {
		respondError(w, err)
		return
	}

	created, err := a.registry.CreateCollege(r.Context(), c, logo, logoName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (a *API) handleUpdateCollege(w http.ResponseWriter, r *http.Request) {
	c, logo, logoName, err := collegeForm(r)
	if err != nil {
		respondError(w, err)
		return
	}
	c.ID = domain.CollegeID(r.PathValue("id"))

	if err := a.registry.UpdateCollege(r.Context(), c, logo, logoName); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleDeleteCollege(w http.ResponseWriter, r *http.Request) {
	if err := a.registry.DeleteCollege(r.Context(), domain.CollegeID(r.PathValue("id"))); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// --- partylists ---

func (a *API) handleListPartylists(w http.ResponseWriter, r *http.Request) {
	list, err := a.registry.Partylists(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

type partylistRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Platform    string    `json:"platform"`
	DateFounded time.Time `json:"date_founded"`
}

func (a *API) handleCreatePartylist(w http.ResponseWriter, r *http.Request) {
	var req partylistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", registry.ErrPartylistInvalid, err))
		return
	}

	p, err := a.registry.CreatePartylist(r.Context(), domain.Partylist{
		Name:        req.Name,
		Description: req.Description,
		Platform:    req.Platform,
		DateFounded: req.DateFounded,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (a *API) handleUpdatePartylist(w http.ResponseWriter, r *http.Request) {
	var req partylistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", registry.ErrPartylistInvalid, err))
		return
	}

	err := a.registry.UpdatePartylist(r.Context(), domain.Partylist{
		ID:          domain.PartylistID(r.PathValue("id")),
		Name:        req.Name,
		Description: req.Description,
		Platform:    req.Platform,
		DateFounded: req.DateFounded,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleDeletePartylist(w http.ResponseWriter, r *http.Request) {
	if err := a.registry.DeletePartylist(r.Context(), domain.PartylistID(r.PathValue("id"))); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// --- candidacy applications ---

func (a *API) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, fmt.Errorf("%w: %s", registry.ErrApplicationInvalid, err))
		return
	}

	in := registry.ApplyInput{
		Identity:    identityFrom(r),
		ElectionID:  domain.ElectionID(r.PathValue("id")),
		PositionID:  domain.PositionID(r.FormValue("position_id")),
		PartylistID: domain.PartylistID(r.FormValue("partylist_id")),
		Platform:    r.FormValue("platform"),
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["documents"] {
			file, err := header.Open()
			if err != nil {
				respondError(w, fmt.Errorf("%w: %s", registry.ErrApplicationInvalid, err))
				return
			}
			defer file.Close()
			in.Documents = append(in.Documents, registry.Document{
				Name:   header.Filename,
				Reader: file,
			})
		}
	}

	app, err := a.registry.SubmitApplication(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, app)
}

func (a *API) handleListApplications(w http.ResponseWriter, r *http.Request) {
	var status *domain.ApplicationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, fmt.Errorf("%w: bad status filter", registry.ErrApplicationInvalid))
			return
		}
		st := domain.ApplicationStatus(code)
		status = &st
	}

	list, err := a.registry.ApplicationsByElection(r.Context(), domain.ElectionID(r.PathValue("id")), status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *API) handleUserApplications(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	// Admin views pass the target user explicitly.
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		identity.UserID = userID
	}

	list, err := a.registry.UserApplications(r.Context(), identity)
	if err != nil {
		respondError(w, err)
		return
	}
	if list == nil {
		list = []domain.CandidacyApplication{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *API) handleHasApplied(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	applied, err := a.registry.HasUserApplied(r.Context(),
		identityFrom(r),
		domain.ElectionID(q.Get("election_id")),
		domain.PositionID(q.Get("position_id")),
	)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

type updateApplicationStatusRequest struct {
	Status domain.ApplicationStatus `json:"status"`
}

func (a *API) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req updateApplicationStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %s", registry.ErrApplicationInvalid, err))
		return
	}

	id := domain.ApplicationID(r.PathValue("id"))
	if err := a.registry.UpdateApplicationStatus(r.Context(), id, req.Status); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleCancelApplication(w http.ResponseWriter, r *http.Request) {
	id := domain.ApplicationID(r.PathValue("id"))
	if err := a.registry.CancelApplication(r.Context(), identityFrom(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
