package producer

import (
	"context"
	"encoding/json"

	"github.com/beadworks/storeadmin/internal/jobs"
	"github.com/beadworks/storeadmin/internal/queue/redisclient"
	"github.com/redis/go-redis/v9"
)

// Producer pushes encoded jobs onto the redis list the worker drains.
type Producer struct {
	rdb *redis.Client
}

func New(client *redisclient.Client) *Producer {
	return &Producer{rdb: client.Raw()}
}

func (p *Producer) Enqueue(ctx context.Context, j jobs.Job) error {
	b, err := json.Marshal(j)
	if err != nil {
		return err
	}

	return p.rdb.LPush(ctx, redisclient.KeyJobs, b).Err()
}

// EnqueuePayload encodes, validates and enqueues in one step.
func (p *Producer) EnqueuePayload(ctx context.Context, t jobs.JobType, payload any) error {
	if err := jobs.ValidatePayload(t, payload); err != nil {
		return err
	}

	b, err := jobs.EncodePayload(t, payload)
	if err != nil {
		return err
	}

	j, err := jobs.NewJob(t, b)
	if err != nil {
		return err
	}

	return p.Enqueue(ctx, j)
}
