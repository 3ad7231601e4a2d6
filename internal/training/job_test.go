package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegalTransitions(t *testing.T) {
	allowed := []struct{ from, to Step }{
		{StepIdle, StepUploading},
		{StepUploading, StepProcessing},
		{StepProcessing, StepCreatingBot},
		{StepCreatingBot, StepSucceeded},
		{StepIdle, StepFailed},
		{StepUploading, StepFailed},
		{StepProcessing, StepFailed},
		{StepCreatingBot, StepFailed},
	}
	for _, tc := range allowed {
		assert.True(t, legalTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to Step }{
		{StepIdle, StepProcessing},
		{StepUploading, StepCreatingBot},
		{StepProcessing, StepSucceeded},
		{StepSucceeded, StepUploading},
		{StepSucceeded, StepFailed},
		{StepFailed, StepUploading},
		{StepFailed, StepSucceeded},
	}
	for _, tc := range denied {
		assert.False(t, legalTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalJobCannotBeRevived(t *testing.T) {
	job := newJob(nil)
	job.to(StepUploading)
	job.fail(StepUploading, "File upload failed")

	job.to(StepProcessing)
	job.to(StepSucceeded)

	assert.Equal(t, StepFailed, job.Step())
	assert.Equal(t, StepUploading, job.FailedStep())
	assert.Equal(t, "File upload failed", job.Err())
}

func TestJobsMintDistinctIDs(t *testing.T) {
	a, b := newJob(nil), newJob(nil)
	assert.NotEmpty(t, a.BotID)
	assert.NotEmpty(t, a.KBID)
	assert.NotEqual(t, a.BotID, b.BotID)
	assert.NotEqual(t, a.KBID, b.KBID)
}

func TestStepStrings(t *testing.T) {
	assert.Equal(t, "idle", StepIdle.String())
	assert.Equal(t, "creating_bot", StepCreatingBot.String())
	assert.Equal(t, "failed", StepFailed.String())
	assert.False(t, StepCreatingBot.Terminal())
	assert.True(t, StepSucceeded.Terminal())
	assert.True(t, StepFailed.Terminal())
}
