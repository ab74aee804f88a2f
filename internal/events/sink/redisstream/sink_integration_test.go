//go:build integration

package redisstream

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"patrolfund/internal/events"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/testutil/containers"
)

func TestSinkAppendsToStream(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	sink := New(rc.Client, 1_000)

	event := events.Event{
		ID:     "event-0001",
		Type:   events.TypeVoteCast,
		Height: 42,
		Actor:  id.Principal("wallet-voter-00000000000001"),
		Amount: 100,
	}
	require.NoError(t, sink.Send(ctx, event))

	entries, err := rc.Client.XRange(ctx, StreamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Equal(t, "event-0001", entries[0].Values["id"])
	require.Equal(t, string(events.TypeVoteCast), entries[0].Values["type"])

	var decoded events.Event
	payload, ok := entries[0].Values["payload"].(string)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	require.Equal(t, event, decoded)
}

func TestSinkTrimsApproximately(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	sink := New(rc.Client, 10)

	for n := 0; n < 200; n++ {
		require.NoError(t, sink.Send(ctx, events.Event{
			ID:     uuid.NewString(),
			Type:   events.TypeDonationReceived,
			Height: uint64(n),
		}))
	}

	// MAXLEN ~ trims at node boundaries, so allow generous slack over the cap.
	length, err := rc.Client.XLen(ctx, StreamKey).Result()
	require.NoError(t, err)
	require.Less(t, length, int64(200))
}
