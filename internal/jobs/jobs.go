package jobs

import (
	"time"

	"github.com/google/uuid"
)

// a Job is the unit of asynchronous work carried over the redis queue.

type Job struct {
	ID         string    `json:"id"`
	Type       JobType   `json:"type"`
	Payload    []byte    `json:"payload"` // raw json
	Attempts   int       `json:"attempts"`
	MaxTries   int       `json:"maxTries"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

func NewJob(t JobType, payloadJSON []byte) (Job, error) {
	if !t.IsValid() {
		return Job{}, ErrInvalidJobType
	}
	if len(payloadJSON) == 0 {
		return Job{}, ErrInvalidJobPayload
	}

	return Job{
		ID:         uuid.NewString(),
		Type:       t,
		Payload:    payloadJSON,
		Attempts:   0,
		MaxTries:   5,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}
