// Package migrations centralizes the gormigrate versions applied at startup.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: nil db")
	}

	// gormigrate versions the schema instead of relying on bare AutoMigrate
	// in production.
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202501150001_init_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&domain.Election{},
					&domain.Position{},
					&domain.College{},
					&domain.Partylist{},
					&domain.UserProfile{},
					&domain.CandidacyApplication{},
					&domain.VoterRollEntry{},
					&domain.Vote{},
					&domain.Notification{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"notification",
					"votes",
					"voters_list",
					"candidacy_application",
					"user_profile",
					"partylists",
					"colleges",
					"positions",
					"elections",
				)
			},
		},
		{
			// The unique indexes on votes(election_id, voter_id) and
			// voters_list(election_id, reg_email) are the hard guarantee
			// behind the at-most-once invariants; the model tags create them
			// for fresh databases, this step covers existing ones.
			ID: "202501150002_unique_ballot_and_roll",
			Migrate: func(tx *gorm.DB) error {
				if !tx.Migrator().HasIndex(&domain.Vote{}, "idx_votes_election_voter") {
					if err := tx.Migrator().CreateIndex(&domain.Vote{}, "idx_votes_election_voter"); err != nil {
						return err
					}
				}
				if !tx.Migrator().HasIndex(&domain.VoterRollEntry{}, "idx_voters_election_email") {
					if err := tx.Migrator().CreateIndex(&domain.VoterRollEntry{}, "idx_voters_election_email"); err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropIndex(&domain.Vote{}, "idx_votes_election_voter"); err != nil {
					return err
				}
				return tx.Migrator().DropIndex(&domain.VoterRollEntry{}, "idx_voters_election_email")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: apply failed: %w", err)
	}

	return nil
}
