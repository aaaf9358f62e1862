package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from TaskStatus
		to   TaskStatus
		want bool
	}{
		{TaskStatusQueued, TaskStatusProcessing, true},
		{TaskStatusQueued, TaskStatusDone, false},
		{TaskStatusQueued, TaskStatusError, false},
		{TaskStatusProcessing, TaskStatusDone, true},
		{TaskStatusProcessing, TaskStatusError, true},
		{TaskStatusProcessing, TaskStatusQueued, false},
		{TaskStatusDone, TaskStatusError, false},
		{TaskStatusDone, TaskStatusProcessing, false},
		{TaskStatusError, TaskStatusDone, false},
		{TaskStatusError, TaskStatusQueued, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTaskStatus_Terminal(t *testing.T) {
	assert.False(t, TaskStatusQueued.Terminal())
	assert.False(t, TaskStatusProcessing.Terminal())
	assert.True(t, TaskStatusDone.Terminal())
	assert.True(t, TaskStatusError.Terminal())
	assert.False(t, TaskStatus("pending").Valid())
}

func TestTaskKind_Valid(t *testing.T) {
	for _, k := range TaskKinds() {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, TaskKind("transcode").Valid())
}
