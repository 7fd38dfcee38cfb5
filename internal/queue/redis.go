package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "intelliapply:analysis"

// RedisQueue is a FIFO list shared by every API and worker instance.
type RedisQueue struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		client:      client,
		key:         DefaultKey,
		pollTimeout: time.Second,
	}
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, task AnalysisTask) error {
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (AnalysisTask, error) {
	for {
		if err := ctx.Err(); err != nil {
			return AnalysisTask{}, err
		}

		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return AnalysisTask{}, ctxErr
			}
			return AnalysisTask{}, fmt.Errorf("dequeue task: %w", err)
		}

		// BRPOP returns [key, value]
		var task AnalysisTask
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return AnalysisTask{}, fmt.Errorf("unmarshal task: %w", err)
		}
		return task, nil
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
