package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueuePrint = "jobs:print"

const jobTypePrint = "print_bon_asteptare"

// MaxJobAttempts is how many times a job runs before it is parked in the DLQ.
const MaxJobAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueuePrint schedules the slip of a parked receipt.
func (d *Dispatcher) EnqueuePrint(ctx context.Context, idBon int) error {
	data, err := json.Marshal(PrintJobPayload{IDBon: idBon})
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, QueuePrint, Job{Type: jobTypePrint, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// JobHandler processes the payload of one job type.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Pool consumes the queues with numWorkers goroutines. Each goroutine blocks
// on BRPOP and is idle when there is nothing to do.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]JobHandler
	queues   []string
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: make(map[string]JobHandler), queues: []string{QueuePrint}}
}

// Handle registers h for jobs of type jobType. Call before Start.
func (p *Pool) Handle(jobType string, h JobHandler) {
	p.handlers[jobType] = h
}

func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.dispatch(ctx, result[0], result[1])
		}
	}
}

// dispatch runs one job. A failed job goes back on its queue until it has
// run MaxJobAttempts times, then it is parked in the DLQ.
func (p *Pool) dispatch(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		SendToDLQ(ctx, p.rdb, queue, job, "no handler for job type")
		return
	}

	err := h.Process(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("type", job.Type).Str("queue", queue).Msg("job processed")
		return
	}

	job.Attempts++
	if job.Attempts >= MaxJobAttempts {
		SendToDLQ(ctx, p.rdb, queue, job, fmt.Sprintf("max attempts (%d) exceeded: %s", MaxJobAttempts, err))
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, requeued")
	if perr := push(ctx, p.rdb, queue, job); perr != nil {
		log.Error().Err(perr).Str("type", job.Type).Msg("failed to requeue job")
	}
}
