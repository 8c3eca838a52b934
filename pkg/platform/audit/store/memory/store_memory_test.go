package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "grantgate/pkg/domain"
	audit "grantgate/pkg/platform/audit"
)

func TestListByProgram(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	programID := id.NewProgramID()
	base := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)

	// appended out of order
	for subject, offset := range map[string]int{"c": 2, "a": 0, "b": 1} {
		require.NoError(t, s.Append(ctx, audit.Event{
			ProgramID: programID,
			Subject:   subject,
			Action:    string(audit.EventEligibilityEvaluated),
			Timestamp: base.Add(time.Duration(offset) * time.Minute),
		}))
	}

	all, err := s.ListByProgram(ctx, programID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, subjects(all), "oldest first")

	recent, err := s.ListByProgram(ctx, programID, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, subjects(recent))

	none, err := s.ListByProgram(ctx, id.NewProgramID(), 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	s.Clear()
	cleared, err := s.ListByProgram(ctx, programID, 0)
	require.NoError(t, err)
	assert.Empty(t, cleared)
}

func subjects(events []audit.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Subject
	}
	return out
}
