package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livetest-app/livetest/internal/dto"
)

func TestResultHubDeliversToEverySubscriber(t *testing.T) {
	hub := NewResultHub()

	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	require.Equal(t, 2, hub.Subscribers())

	hub.Publish(dto.ResultEvent{TestID: testUUID, SubmissionID: 3})

	for _, ch := range []<-chan dto.ResultEvent{first, second} {
		select {
		case event := <-ch:
			require.Equal(t, 3, event.SubmissionID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestResultHubCancelReleasesSlot(t *testing.T) {
	hub := NewResultHub()

	ch, cancel := hub.Subscribe()
	cancel()
	require.Zero(t, hub.Subscribers())

	_, open := <-ch
	require.False(t, open, "cancel must close the channel")

	// Publishing after cancel must not panic on the closed channel.
	hub.Publish(dto.ResultEvent{TestID: testUUID, SubmissionID: 1})

	cancel() // idempotent
}

func TestResultHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewResultHub()

	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < resultBufferSize+5; i++ {
		hub.Publish(dto.ResultEvent{TestID: testUUID, SubmissionID: i})
	}

	// The buffer holds the first events; the overflow was dropped without
	// blocking the publisher.
	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			require.Equal(t, resultBufferSize, received)
			return
		}
	}
}
