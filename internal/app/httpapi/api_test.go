package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/campusvote/halalan/internal/app/elections"
	"github.com/campusvote/halalan/internal/app/notify"
	"github.com/campusvote/halalan/internal/app/registry"
	"github.com/campusvote/halalan/internal/app/voterroll"
	"github.com/campusvote/halalan/internal/app/voting"
	"github.com/campusvote/halalan/internal/domain"
	"github.com/campusvote/halalan/internal/platform/clock"
	"github.com/campusvote/halalan/internal/platform/ratelimit"
	"github.com/campusvote/halalan/internal/platform/storage/objectstore"
	"github.com/campusvote/halalan/internal/platform/storage/postgres"
)

type testEnv struct {
	mux *http.ServeMux
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Election{},
		&domain.Position{},
		&domain.College{},
		&domain.Partylist{},
		&domain.UserProfile{},
		&domain.CandidacyApplication{},
		&domain.VoterRollEntry{},
		&domain.Vote{},
		&domain.Notification{},
	))
	t.Cleanup(func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})

	store, err := objectstore.NewLocal(t.TempDir(), "http://files.local")
	require.NoError(t, err)

	sysClock := clock.SystemClock{}
	electionRepo := postgres.NewElectionRepository(db)
	positionRepo := postgres.NewPositionRepository(db)
	collegeRepo := postgres.NewCollegeRepository(db)
	partylistRepo := postgres.NewPartylistRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	candidacyRepo := postgres.NewCandidacyRepository(db)
	voterRepo := postgres.NewVoterRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	electionsSvc := elections.NewService(electionRepo, sysClock, nil)
	registrySvc := registry.NewService(
		positionRepo, collegeRepo, partylistRepo, candidacyRepo, profileRepo, electionRepo,
		store, nil, sysClock, nil, "",
	)
	votersSvc := voterroll.NewService(voterRepo, sysClock, nil)
	votingSvc := voting.NewService(voteRepo, voterRepo, candidacyRepo, profileRepo, nil, ratelimit.NewNoop(), sysClock, nil)
	notifySvc := notify.NewService(notificationRepo, profileRepo)

	mux := http.NewServeMux()
	New(electionsSvc, registrySvc, votersSvc, votingSvc, notifySvc).Register(mux)

	return &testEnv{mux: mux, db: db}
}

func (e *testEnv) do(t *testing.T, method, path, body string, identity *domain.Identity) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if identity != nil {
		req.Header.Set(headerUserID, identity.UserID)
		req.Header.Set(headerUserEmail, identity.Email)
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedVotingScenario(t *testing.T) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, e.db.Create(&domain.Election{
		ID:        "el-1",
		Title:     "Student Council 2025",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(24 * time.Hour),
		Status:    domain.ElectionOngoing,
		IsCurrent: true,
	}).Error)
	require.NoError(t, e.db.Create(&domain.Position{ID: "pos-1", Title: "President", Order: 1}).Error)
	require.NoError(t, e.db.Create(&domain.UserProfile{
		ID:        "prof-1",
		UserID:    "user-1",
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "maria@campus.edu",
	}).Error)
	require.NoError(t, e.db.Create(&domain.CandidacyApplication{
		ID:         "app-1",
		ProfileID:  "prof-1",
		ElectionID: "el-1",
		PositionID: "pos-1",
		Status:     domain.ApplicationApproved,
		AppliedAt:  now,
	}).Error)
	require.NoError(t, e.db.Create(&domain.VoterRollEntry{
		ID:         "vr-1",
		ElectionID: "el-1",
		RegEmail:   "maria@campus.edu",
	}).Error)
}

func TestCreateAndGetElection(t *testing.T) {
	env := newTestEnv(t)

	end := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	rec := env.do(t, http.MethodPost, "/v1/elections",
		fmt.Sprintf(`{"title":"SC 2025","end_date":%q}`, end), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Election
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.IsCurrent)

	rec = env.do(t, http.MethodGet, "/v1/elections/"+string(created.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/elections/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateElectionValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/elections", `{"description":"no title"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitVoteFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedVotingScenario(t)

	voter := &domain.Identity{UserID: "user-1", Email: "maria@campus.edu"}

	rec := env.do(t, http.MethodPost, "/v1/elections/el-1/votes", `{"candidate_id":"app-1"}`, voter)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Second ballot from the same voter conflicts.
	rec = env.do(t, http.MethodPost, "/v1/elections/el-1/votes", `{"candidate_id":"app-1"}`, voter)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Not on the roll.
	stranger := &domain.Identity{UserID: "user-2", Email: "stranger@campus.edu"}
	rec = env.do(t, http.MethodPost, "/v1/elections/el-1/votes", `{"candidate_id":"app-1"}`, stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitVoteRejectedWhenElectionCompleted(t *testing.T) {
	env := newTestEnv(t)
	env.seedVotingScenario(t)

	require.NoError(t, env.db.Model(&domain.Election{}).
		Where("id = ?", "el-1").
		Update("status", string(domain.ElectionCompleted)).Error)

	voter := &domain.Identity{UserID: "user-1", Email: "maria@campus.edu"}
	rec := env.do(t, http.MethodPost, "/v1/elections/el-1/votes", `{"candidate_id":"app-1"}`, voter)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEligibilityAndHasVoted(t *testing.T) {
	env := newTestEnv(t)
	env.seedVotingScenario(t)

	voter := &domain.Identity{UserID: "user-1", Email: "maria@campus.edu"}

	rec := env.do(t, http.MethodGet, "/v1/elections/el-1/eligibility", "", voter)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"eligible":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/v1/elections/el-1/has-voted", "", voter)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"has_voted":false}`, rec.Body.String())

	env.do(t, http.MethodPost, "/v1/elections/el-1/votes", `{"candidate_id":"app-1"}`, voter)

	rec = env.do(t, http.MethodGet, "/v1/elections/el-1/has-voted", "", voter)
	assert.JSONEq(t, `{"has_voted":true}`, rec.Body.String())
}

func TestImportVotersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedVotingScenario(t)

	body := `{"voters":[
		{"email":"new@campus.edu","fullname":"New Voter"},
		{"email":"maria@campus.edu"},
		{"email":"broken"}
	]}`
	rec := env.do(t, http.MethodPost, "/v1/elections/el-1/voters/import", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imported":1,"skipped":2}`, rec.Body.String())
}

func TestStatisticsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedVotingScenario(t)

	voter := &domain.Identity{UserID: "user-1", Email: "maria@campus.edu"}
	env.do(t, http.MethodPost, "/v1/elections/el-1/votes", `{"candidate_id":"app-1"}`, voter)

	rec := env.do(t, http.MethodGet, "/v1/elections/el-1/statistics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats []domain.PositionTally
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	require.Len(t, stats[0].Candidates, 1)
	assert.Equal(t, "Maria Santos", stats[0].Candidates[0].Name)
	assert.Equal(t, int64(1), stats[0].Candidates[0].VoteCount)
}

func TestApplicationCheckEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedVotingScenario(t)

	voter := &domain.Identity{UserID: "user-1", Email: "maria@campus.edu"}
	rec := env.do(t, http.MethodGet, "/v1/applications/check?election_id=el-1&position_id=pos-1", "", voter)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"applied":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/v1/applications/check?election_id=el-1&position_id=pos-9", "", voter)
	assert.JSONEq(t, `{"applied":false}`, rec.Body.String())
}

func TestNotificationsRequireKnownProfile(t *testing.T) {
	env := newTestEnv(t)
	env.seedVotingScenario(t)

	rec := env.do(t, http.MethodGet, "/v1/notifications", "", &domain.Identity{UserID: "stranger"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/notifications", "", &domain.Identity{UserID: "user-1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPositionsCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/positions", `{"title":"Senator","order":3,"max_candidate":12}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodGet, "/v1/positions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/v1/positions/"+string(created.ID), `{"title":"Senator-at-Large"}`, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/positions/"+string(created.ID), "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/positions/"+string(created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
