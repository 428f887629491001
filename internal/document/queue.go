package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ExportJob asks the worker to render one quote into a PDF.
type ExportJob struct {
	QuoteID uuid.UUID `json:"quoteId"`
}

type jobMessage struct {
	QuoteID     uuid.UUID `json:"quoteId"`
	Attempt     int       `json:"attempt"`
	MaxAttempts int       `json:"maxAttempts"`
	AvailableAt int64     `json:"availableAt"`
}

// Queue publishes export jobs to a Redis sorted set keyed by availability
// time. A job for a quote already queued within the dedup window is dropped.
type Queue struct {
	R        *redis.Client
	Name     string
	DedupTTL time.Duration
}

func (q Queue) jobsKey() string       { return q.Name + ":jobs" }
func (q Queue) processingKey() string { return q.Name + ":processing" }
func (q Queue) dlqKey() string        { return q.Name + ":dlq" }
func (q Queue) dedupKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:dedup:%s", q.Name, id)
}

// Enqueue schedules an export job.
func (q Queue) Enqueue(ctx context.Context, job ExportJob) error {
	if q.R == nil {
		return errors.New("document: queue redis client not configured")
	}
	if job.QuoteID == uuid.Nil {
		return errors.New("document: export job needs a quote id")
	}
	ttl := q.DedupTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	ok, err := q.R.SetNX(ctx, q.dedupKey(job.QuoteID), "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	msg := jobMessage{QuoteID: job.QuoteID, MaxAttempts: 5, AvailableAt: time.Now().UnixNano()}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.R.ZAdd(ctx, q.jobsKey(), redis.Z{Score: float64(msg.AvailableAt), Member: raw}).Err()
}

// Consumer drains export jobs. Jobs in flight sit in a processing set scored
// by a visibility deadline so a crashed worker's jobs get redelivered.
type Consumer struct {
	Queue             Queue
	Concurrency       int
	VisibilityTimeout time.Duration
	RetryBase         time.Duration
	Handler           func(context.Context, ExportJob) error
}

// Run processes jobs until the context is cancelled.
func (c Consumer) Run(ctx context.Context) error {
	if c.Queue.R == nil {
		return errors.New("document: consumer redis client not configured")
	}
	if c.Handler == nil {
		return errors.New("document: consumer handler not configured")
	}
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	visibility := c.VisibilityTimeout
	if visibility <= 0 {
		visibility = 60 * time.Second
	}
	retryBase := c.RetryBase
	if retryBase <= 0 {
		retryBase = time.Second
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	requeueTicker := time.NewTicker(time.Second)
	defer requeueTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case <-requeueTicker.C:
			if err := c.requeueExpired(ctx); err != nil {
				return err
			}
		default:
		}

		res, err := c.Queue.R.ZPopMin(ctx, c.Queue.jobsKey(), 1).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if err == redis.Nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return err
		}
		if len(res) == 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		member, ok := res[0].Member.(string)
		if !ok {
			continue
		}
		var msg jobMessage
		if err := json.Unmarshal([]byte(member), &msg); err != nil {
			continue
		}
		now := time.Now().UnixNano()
		if msg.AvailableAt > now {
			c.Queue.R.ZAdd(ctx, c.Queue.jobsKey(), redis.Z{Score: float64(msg.AvailableAt), Member: member})
			sleep := time.Duration(msg.AvailableAt - now)
			if sleep > time.Second {
				sleep = time.Second
			}
			time.Sleep(sleep)
			continue
		}

		msg.Attempt++
		raw, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		deadline := time.Now().Add(visibility).UnixNano()
		if err := c.Queue.R.ZAdd(ctx, c.Queue.processingKey(), redis.Z{Score: float64(deadline), Member: raw}).Err(); err != nil {
			return err
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(raw string, m jobMessage) {
			defer func() { <-sem }()
			defer wg.Done()
			jobCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			if err := c.Handler(jobCtx, ExportJob{QuoteID: m.QuoteID}); err != nil {
				c.handleFailure(jobCtx, raw, m, retryBase)
				return
			}
			c.ack(jobCtx, raw, m)
		}(string(raw), msg)
	}
}

func (c Consumer) handleFailure(ctx context.Context, raw string, msg jobMessage, base time.Duration) {
	_ = c.Queue.R.ZRem(ctx, c.Queue.processingKey(), raw)
	if msg.MaxAttempts > 0 && msg.Attempt >= msg.MaxAttempts {
		if encoded, err := json.Marshal(msg); err == nil {
			_ = c.Queue.R.LPush(ctx, c.Queue.dlqKey(), encoded).Err()
		}
		_ = c.Queue.R.Del(ctx, c.Queue.dedupKey(msg.QuoteID)).Err()
		return
	}
	msg.AvailableAt = time.Now().Add(backoff(base, msg.Attempt)).UnixNano()
	if encoded, err := json.Marshal(msg); err == nil {
		_ = c.Queue.R.ZAdd(ctx, c.Queue.jobsKey(), redis.Z{Score: float64(msg.AvailableAt), Member: encoded}).Err()
	}
}

func (c Consumer) ack(ctx context.Context, raw string, msg jobMessage) {
	_ = c.Queue.R.ZRem(ctx, c.Queue.processingKey(), raw)
	_ = c.Queue.R.Del(ctx, c.Queue.dedupKey(msg.QuoteID)).Err()
}

func (c Consumer) requeueExpired(ctx context.Context) error {
	now := float64(time.Now().UnixNano())
	due, err := c.Queue.R.ZRangeByScore(ctx, c.Queue.processingKey(), &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%f", now)}).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	for _, raw := range due {
		var msg jobMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			_ = c.Queue.R.ZRem(ctx, c.Queue.processingKey(), raw).Err()
			continue
		}
		_ = c.Queue.R.ZRem(ctx, c.Queue.processingKey(), raw).Err()
		msg.AvailableAt = time.Now().UnixNano()
		encoded, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		_ = c.Queue.R.ZAdd(ctx, c.Queue.jobsKey(), redis.Z{Score: float64(msg.AvailableAt), Member: encoded}).Err()
	}
	return nil
}

// backoff grows exponentially from base with up to 20% jitter.
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base * time.Duration(1<<uint(attempt-1))
	jitter := float64(d) * 0.2
	delta := (rand.Float64()*2 - 1) * jitter
	return d + time.Duration(delta)
}
