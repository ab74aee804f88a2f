//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"patrolfund/internal/events"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = New(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

// truncate resets the outbox between subtests.
func (s *PostgresStoreSuite) truncate() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "chain_events_outbox"))
}

func (s *PostgresStoreSuite) event(n int) events.Event {
	poolID := id.PoolID(0)
	return events.Event{
		ID:     fmt.Sprintf("event-%04d", n),
		Type:   events.TypeDonationReceived,
		Height: uint64(100 + n),
		Actor:  id.Principal("wallet-donor-00000000000001"),
		PoolID: &poolID,
		Amount: uint64(50 * n),
	}
}

// ============================================================================
// Append and ListRecent
// ============================================================================

func (s *PostgresStoreSuite) TestAppendAndListRecent() {
	ctx := context.Background()

	s.Run("round-trips events oldest first", func() {
		s.truncate()
		for n := 1; n <= 3; n++ {
			s.Require().NoError(s.store.Append(ctx, s.event(n)))
		}

		got, err := s.store.ListRecent(ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.Equal("event-0001", got[0].ID)
		s.Equal("event-0003", got[2].ID)
		s.Equal(events.TypeDonationReceived, got[0].Type)
		s.Equal(uint64(101), got[0].Height)
		s.Require().NotNil(got[0].PoolID)
		s.Equal(id.PoolID(0), *got[0].PoolID)
	})

	s.Run("limit keeps only the newest rows", func() {
		s.truncate()
		for n := 1; n <= 5; n++ {
			s.Require().NoError(s.store.Append(ctx, s.event(n)))
		}

		got, err := s.store.ListRecent(ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal("event-0004", got[0].ID)
		s.Equal("event-0005", got[1].ID)
	})

	s.Run("duplicate event id is rejected", func() {
		s.truncate()
		s.Require().NoError(s.store.Append(ctx, s.event(1)))
		s.Error(s.store.Append(ctx, s.event(1)))
	})

	s.Run("empty table lists nothing", func() {
		s.truncate()
		got, err := s.store.ListRecent(ctx, 10)
		s.Require().NoError(err)
		s.Empty(got)
	})
}
