package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshProgress() Progress {
	return Initialize(Schedule{{Day: "2024-01-01", Slots: []Slot{
		{Time: "09:00-10:30", Topics: []string{"Algebra", "Calculus"}},
	}}})
}

func TestSetCompletion_StatusTransitions(t *testing.T) {
	p := freshProgress()

	p, err := SetCompletion(p, "2024-01-01", "09:00-10:30", []string{"Algebra"}, true)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, p[0].Slots[0].Status)

	p, err = SetCompletion(p, "2024-01-01", "09:00-10:30", []string{"Calculus"}, true)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p[0].Slots[0].Status)
	assert.Empty(t, p[0].Slots[0].PendingTopics)

	p, err = SetCompletion(p, "2024-01-01", "09:00-10:30", []string{"Algebra"}, false)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, p[0].Slots[0].Status)
	assert.Equal(t, []string{"Calculus"}, p[0].Slots[0].CompletedTopics)
	assert.Equal(t, []string{"Algebra"}, p[0].Slots[0].PendingTopics)

	p, err = SetCompletion(p, "2024-01-01", "09:00-10:30", []string{"Calculus"}, false)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p[0].Slots[0].Status)
}

func TestSetCompletion_Idempotent(t *testing.T) {
	once, err := SetCompletion(freshProgress(), "2024-01-01", "09:00-10:30", []string{"Algebra"}, true)
	require.NoError(t, err)
	twice, err := SetCompletion(once, "2024-01-01", "09:00-10:30", []string{"Algebra"}, true)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestSetCompletion_IgnoresUnknownTopics(t *testing.T) {
	p, err := SetCompletion(freshProgress(), "2024-01-01", "09:00-10:30", []string{"Chemistry"}, true)
	require.NoError(t, err)

	slot := p[0].Slots[0]
	assert.Empty(t, slot.CompletedTopics)
	assert.Equal(t, []string{"Algebra", "Calculus"}, slot.PendingTopics)
	assert.Equal(t, StatusPending, slot.Status)
}

func TestSetCompletion_KeepsSetsDisjoint(t *testing.T) {
	p, err := MarkTopics(freshProgress(), "2024-01-01", "09:00-10:30", []string{"Algebra", "Algebra", "Calculus"})
	require.NoError(t, err)

	slot := p[0].Slots[0]
	assert.ElementsMatch(t, []string{"Algebra", "Calculus"}, slot.CompletedTopics)
	assert.Empty(t, slot.PendingTopics)
	for _, c := range slot.CompletedTopics {
		assert.NotContains(t, slot.PendingTopics, c)
	}
	assert.Equal(t, DeriveStatus(slot.CompletedTopics, slot.PendingTopics), slot.Status)
}

func TestSetCompletion_NotFound(t *testing.T) {
	_, err := SetCompletion(freshProgress(), "2024-02-01", "09:00-10:30", []string{"Algebra"}, true)
	assert.True(t, errors.Is(err, ErrProgressDayNotFound))

	_, err = SetCompletion(freshProgress(), "2024-01-01", "11:00-12:00", []string{"Algebra"}, true)
	assert.True(t, errors.Is(err, ErrProgressSlotNotFound))
}

func TestSetCompletion_LeavesInputUntouched(t *testing.T) {
	p := freshProgress()
	_, err := MarkTopics(p, "2024-01-01", "09:00-10:30", []string{"Algebra"})
	require.NoError(t, err)

	assert.Empty(t, p[0].Slots[0].CompletedTopics)
	assert.Equal(t, StatusPending, p[0].Slots[0].Status)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		completed []string
		pending   []string
		want      SlotStatus
	}{
		{"both empty", nil, nil, StatusPending},
		{"only pending", nil, []string{"a"}, StatusPending},
		{"mixed", []string{"a"}, []string{"b"}, StatusInProgress},
		{"only completed", []string{"a"}, nil, StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.completed, tt.pending))
		})
	}
}
