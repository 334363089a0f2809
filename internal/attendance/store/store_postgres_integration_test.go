//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agorax/internal/attendance/models"
	"agorax/internal/attendance/store"
	directorymodels "agorax/internal/directory/models"
	"agorax/internal/directory/store/condominium"
	"agorax/internal/directory/store/owner"
	meetingmodels "agorax/internal/meeting/models"
	meetingstore "agorax/internal/meeting/store/meeting"
	id "agorax/pkg/domain"
	"agorax/pkg/platform/sentinel"
	"agorax/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres

	condominiums *condominium.PostgresStore
	owners       *owner.PostgresStore
	meetings     *meetingstore.PostgresStore

	meetingID id.MeetingID
	ownerID   id.OwnerID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.condominiums = condominium.NewPostgres(s.postgres.DB)
	s.owners = owner.NewPostgres(s.postgres.DB)
	s.meetings = meetingstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "votes", "presences", "agenda_items", "meetings", "owners", "condominiums")
	s.Require().NoError(err)

	now := time.Now().UTC()
	condoID := id.CondominiumID(uuid.New())
	condo, err := directorymodels.NewCondominium(condoID, "Conjunto Los Pinos", 100.0, now)
	s.Require().NoError(err)
	s.Require().NoError(s.condominiums.Create(ctx, condo))

	s.ownerID = id.OwnerID(uuid.New())
	resident, err := directorymodels.NewOwner(s.ownerID, condoID, "Casa 14", 12.5, now)
	s.Require().NoError(err)
	s.Require().NoError(s.owners.Create(ctx, resident))

	s.meetingID = id.MeetingID(uuid.New())
	m, err := meetingmodels.NewMeeting(s.meetingID, condoID, "Asamblea Anual", now.Add(time.Hour), 100.0, now)
	s.Require().NoError(err)
	s.Require().NoError(s.meetings.Create(ctx, m))
}

func (s *PostgresStoreSuite) newPresence(coefficient float64) *models.Presence {
	return &models.Presence{
		MeetingID:    s.meetingID,
		OwnerID:      s.ownerID,
		Coefficient:  coefficient,
		RegisteredAt: time.Now().UTC(),
	}
}

func (s *PostgresStoreSuite) TestUpsertAndFindRoundTrip() {
	ctx := context.Background()
	presence := s.newPresence(12.5)

	s.Require().NoError(s.store.Upsert(ctx, presence))

	found, err := s.store.Find(ctx, s.meetingID, s.ownerID)
	s.Require().NoError(err)
	s.Equal(s.ownerID, found.OwnerID)
	s.InDelta(12.5, found.Coefficient, 0.0001)
	s.WithinDuration(presence.RegisteredAt, found.RegisteredAt, time.Second)
}

// TestUpsertIsIdempotent re-registers the same owner; the composite key
// conflict resolves into an update, never a duplicate row.
func (s *PostgresStoreSuite) TestUpsertIsIdempotent() {
	ctx := context.Background()

	s.Require().NoError(s.store.Upsert(ctx, s.newPresence(12.5)))
	s.Require().NoError(s.store.Upsert(ctx, s.newPresence(15.0)))

	found, err := s.store.Find(ctx, s.meetingID, s.ownerID)
	s.Require().NoError(err)
	s.InDelta(15.0, found.Coefficient, 0.0001)

	roster, err := s.store.ListByMeeting(ctx, s.meetingID)
	s.Require().NoError(err)
	s.Len(roster, 1)
}

func (s *PostgresStoreSuite) TestFindMissingPresence() {
	_, err := s.store.Find(context.Background(), s.meetingID, id.OwnerID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRemove() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, s.newPresence(12.5)))

	s.Require().NoError(s.store.Remove(ctx, s.meetingID, s.ownerID))

	_, err := s.store.Find(ctx, s.meetingID, s.ownerID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.Remove(ctx, s.meetingID, s.ownerID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
