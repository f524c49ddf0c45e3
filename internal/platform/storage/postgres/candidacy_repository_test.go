package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvote/halalan/internal/domain"
)

func application(id string, status domain.ApplicationStatus) domain.CandidacyApplication {
	return domain.CandidacyApplication{
		ID:         domain.ApplicationID(id),
		ProfileID:  "prof-1",
		ElectionID: "el-1",
		PositionID: "pos-1",
		Status:     status,
		AppliedAt:  time.Now().UTC(),
	}
}

func TestCandidacyRepository_ExistsActive(t *testing.T) {
	db := setupDB(t)
	repo := NewCandidacyRepository(db)
	ctx := context.Background()

	active, err := repo.ExistsActive(ctx, "prof-1", "el-1", "pos-1")
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, repo.Create(ctx, application("app-1", domain.ApplicationPending)))

	active, err = repo.ExistsActive(ctx, "prof-1", "el-1", "pos-1")
	require.NoError(t, err)
	assert.True(t, active)

	// A rejection releases the slot for a fresh application.
	require.NoError(t, repo.UpdateStatus(ctx, "app-1", domain.ApplicationRejected))

	active, err = repo.ExistsActive(ctx, "prof-1", "el-1", "pos-1")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestCandidacyRepository_ListByElectionStatusFilter(t *testing.T) {
	db := setupDB(t)
	repo := NewCandidacyRepository(db)
	ctx := context.Background()

	a := application("app-1", domain.ApplicationPending)
	b := application("app-2", domain.ApplicationApproved)
	b.PositionID = "pos-2"
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	all, err := repo.ListByElection(ctx, "el-1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved := domain.ApplicationApproved
	filtered, err := repo.ListByElection(ctx, "el-1", &approved)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, domain.ApplicationID("app-2"), filtered[0].ID)
}

func TestCandidacyRepository_ListApprovedJoinsProfileAndPosition(t *testing.T) {
	db := setupDB(t)
	repo := NewCandidacyRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&domain.Position{ID: "pos-1", Title: "President", Order: 1}).Error)
	require.NoError(t, db.Create(&domain.Position{ID: "pos-2", Title: "Secretary", Order: 2}).Error)
	require.NoError(t, db.Create(&domain.UserProfile{
		ID:        "prof-1",
		UserID:    "user-1",
		FirstName: "maria",
		LastName:  "santos",
	}).Error)

	secretary := application("app-2", domain.ApplicationApproved)
	secretary.PositionID = "pos-2"
	require.NoError(t, repo.Create(ctx, secretary))
	require.NoError(t, repo.Create(ctx, application("app-1", domain.ApplicationApproved)))
	require.NoError(t, repo.Create(ctx, application("app-3", domain.ApplicationPending)))

	roster, err := repo.ListApproved(ctx, "el-1")
	require.NoError(t, err)
	require.Len(t, roster, 2)

	// Ordered by position order, pending rows excluded.
	assert.Equal(t, domain.ApplicationID("app-1"), roster[0].ID)
	assert.Equal(t, "President", roster[0].PositionTitle)
	assert.Equal(t, "maria", roster[0].FirstName)
	assert.Equal(t, domain.ApplicationID("app-2"), roster[1].ID)
	assert.Equal(t, 2, roster[1].PositionOrder)
}

func TestCandidacyRepository_DocumentURLsRoundTrip(t *testing.T) {
	db := setupDB(t)
	repo := NewCandidacyRepository(db)
	ctx := context.Background()

	app := application("app-1", domain.ApplicationPending)
	app.DocumentURLs = []string{
		"http://files.local/applications/app-1/coc.pdf",
		"http://files.local/applications/app-1/grades.pdf",
	}
	require.NoError(t, repo.Create(ctx, app))

	found, err := repo.FindByID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, app.DocumentURLs, found.DocumentURLs)
}

func TestCandidacyRepository_ListByProfileAndElections(t *testing.T) {
	db := setupDB(t)
	repo := NewCandidacyRepository(db)
	ctx := context.Background()

	mine := application("app-1", domain.ApplicationPending)
	other := application("app-2", domain.ApplicationPending)
	other.ElectionID = "el-archived"
	require.NoError(t, repo.Create(ctx, mine))
	require.NoError(t, repo.Create(ctx, other))

	list, err := repo.ListByProfileAndElections(ctx, "prof-1", []domain.ElectionID{"el-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.ApplicationID("app-1"), list[0].ID)

	empty, err := repo.ListByProfileAndElections(ctx, "prof-1", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCandidacyRepository_Delete(t *testing.T) {
	db := setupDB(t)
	repo := NewCandidacyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, application("app-1", domain.ApplicationPending)))
	require.NoError(t, repo.Delete(ctx, "app-1"))

	_, err := repo.FindByID(ctx, "app-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
