package postgres

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campusvote/halalan/internal/domain"
)

// setupDB opens an in-memory sqlite database with the full schema. The
// shared-cache name is per test so parallel tests never collide.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
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
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}
