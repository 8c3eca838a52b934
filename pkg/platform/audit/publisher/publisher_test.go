package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "grantgate/pkg/domain"
	audit "grantgate/pkg/platform/audit"
	"grantgate/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	programID := id.NewProgramID()
	err := pub.Emit(context.Background(), audit.Event{
		ProgramID: programID,
		Action:    string(audit.EventProgramCreated),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), programID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventProgramCreated), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category, "category derived from action")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	programID := id.NewProgramID()
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			ProgramID: programID,
			Subject:   "applicant-1",
			Action:    string(audit.EventEligibilityEvaluated),
			Decision:  "eligible",
		})
		require.NoError(t, err)
	}

	require.NoError(t, pub.Close())

	events, err := store.ListByProgram(context.Background(), programID, 0)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close(), "close is idempotent")

	err := pub.Emit(context.Background(), audit.Event{ProgramID: id.NewProgramID(), Action: string(audit.EventCriterionAdded)})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	programID := id.NewProgramID()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{
				ProgramID: programID,
				Action:    string(audit.EventEligibilityEvaluated),
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_Timestamps(t *testing.T) {
	t.Run("sets a missing timestamp", func(t *testing.T) {
		pub := NewPublisher(memory.NewInMemoryStore())
		defer pub.Close()
		programID := id.NewProgramID()

		before := time.Now()
		require.NoError(t, pub.Emit(context.Background(), audit.Event{ProgramID: programID, Action: string(audit.EventQuestionUpdated)}))
		after := time.Now()

		events, err := pub.List(context.Background(), programID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.Before(before))
		assert.False(t, events[0].Timestamp.After(after))
	})

	t.Run("preserves an existing timestamp", func(t *testing.T) {
		pub := NewPublisher(memory.NewInMemoryStore())
		defer pub.Close()
		programID := id.NewProgramID()
		custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, pub.Emit(context.Background(), audit.Event{ProgramID: programID, Action: string(audit.EventQuestionUpdated), Timestamp: custom}))

		events, err := pub.List(context.Background(), programID)
		require.NoError(t, err)
		assert.Equal(t, custom, events[0].Timestamp)
	})
}

func TestPublisher_SeparatesPrograms(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore())
	defer pub.Close()
	first, second := id.NewProgramID(), id.NewProgramID()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{ProgramID: first, Action: string(audit.EventProgramCreated)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{ProgramID: second, Action: string(audit.EventCriterionAdded)}))

	events, err := pub.List(context.Background(), first)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventProgramCreated), events[0].Action)
}
