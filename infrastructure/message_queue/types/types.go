package mq_types

import (
	"context"
	"time"
)

type TaskQueueBroker interface {
	// Start runs the workers and blocks until Shutdown is called.
	Start() error
	Enqueue(ctx context.Context, task QueueTask) error
	Shutdown()
}

// TaskHandler processes the payload of one task. Returning an error schedules a retry when the
// broker supports it.
type TaskHandler func(ctx context.Context, payload []byte) error

type QueueTask struct {
	Name      Queues
	Payload   []byte
	Priority  TaskPriority
	ProcessIn time.Duration // second
	TimeOut   time.Duration // seconds
	MaxRetry  int
}

type Queues string

type TaskPriority string

const (
	Low    TaskPriority = "low"
	Medium TaskPriority = "medium"
	High   TaskPriority = "high"
)
