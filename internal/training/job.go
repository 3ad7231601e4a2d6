package training

import (
	"sync"

	"github.com/google/uuid"
)

// Step is the closed progress state of one training job. A named
// state machine, not an ordinal: transitions outside the table below
// never happen.
type Step int

const (
	StepIdle Step = iota
	StepUploading
	StepProcessing
	StepCreatingBot
	StepSucceeded
	StepFailed
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepUploading:
		return "uploading"
	case StepProcessing:
		return "processing"
	case StepCreatingBot:
		return "creating_bot"
	case StepSucceeded:
		return "succeeded"
	case StepFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transition can occur. The only
// exit from a terminal job is a fresh job with fresh ids.
func (s Step) Terminal() bool {
	return s == StepSucceeded || s == StepFailed
}

// Job is one run of the training pipeline. BotID and KBID are minted
// once at construction and reused across the upload and registration
// calls so the two can be correlated; a retry never reuses a failed
// job's ids.
type Job struct {
	BotID string
	KBID  string

	mu         sync.Mutex
	step       Step
	failedStep Step
	errMessage string
	onStep     func(Step)
}

func newJob(onStep func(Step)) *Job {
	return &Job{
		BotID:  uuid.NewString(),
		KBID:   uuid.NewString(),
		step:   StepIdle,
		onStep: onStep,
	}
}

// to advances the job along a legal edge; anything else is ignored,
// so a terminal job can never be revived.
func (j *Job) to(next Step) {
	j.mu.Lock()
	if !legalTransition(j.step, next) {
		j.mu.Unlock()
		return
	}
	j.step = next
	notify := j.onStep
	j.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}

func legalTransition(from, to Step) bool {
	switch from {
	case StepIdle:
		return to == StepUploading || to == StepFailed
	case StepUploading:
		return to == StepProcessing || to == StepFailed
	case StepProcessing:
		return to == StepCreatingBot || to == StepFailed
	case StepCreatingBot:
		return to == StepSucceeded || to == StepFailed
	}
	return false
}

// fail moves the job to Failed, recording the step that broke and a
// user-facing message.
func (j *Job) fail(at Step, message string) {
	j.mu.Lock()
	j.failedStep = at
	j.errMessage = message
	j.mu.Unlock()

	j.to(StepFailed)
}

func (j *Job) Step() Step {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.step
}

// FailedStep reports where a failed job broke; an upload failure
// leaves no bot record, a registration failure may have stored files.
func (j *Job) FailedStep() Step {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.failedStep
}

// Err is the user-facing failure message, empty unless Failed.
func (j *Job) Err() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.errMessage
}

// ChatPath builds the conversation link from the client-minted ids;
// no extra round trip, and server-echoed ids are never consulted.
func (j *Job) ChatPath() string {
	return "/chat/" + j.BotID + "/" + j.KBID
}
