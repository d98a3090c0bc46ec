package local

import (
	"context"
	"errors"
	"sync"
	"time"

	"invigil.io/infrastructure/logger"
	mq_types "invigil.io/infrastructure/message_queue/types"
)

var (
	ErrUnknownTask = errors.New("no handler registered for task")
	ErrQueueFull   = errors.New("local task queue is full")
	ErrStopped     = errors.New("local task queue is stopped")
)

type job struct {
	task    mq_types.QueueTask
	attempt int
}

// LocalBroker runs tasks on in-process workers. It is used when no redis broker is configured, so
// queued work does not survive a restart.
type LocalBroker struct {
	Handlers map[mq_types.Queues]mq_types.TaskHandler
	Workers  int
	Capacity int
	// RetryDelay is the wait before a failed task is retried.
	RetryDelay time.Duration

	once    sync.Once
	mu      sync.RWMutex
	jobs    chan job
	done    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

func (lb *LocalBroker) init() {
	lb.once.Do(func() {
		if lb.Workers <= 0 {
			lb.Workers = 4
		}
		if lb.Capacity <= 0 {
			lb.Capacity = 256
		}
		lb.jobs = make(chan job, lb.Capacity)
		lb.done = make(chan struct{})
	})
}

func (lb *LocalBroker) Start() error {
	lb.init()
	for i := 0; i < lb.Workers; i++ {
		lb.wg.Add(1)
		go lb.work()
	}
	logger.Info("local task queue started", logger.LoggerOptions{Key: "workers", Data: lb.Workers})
	<-lb.done
	lb.wg.Wait()
	return nil
}

func (lb *LocalBroker) Enqueue(_ context.Context, task mq_types.QueueTask) error {
	lb.init()
	if _, ok := lb.Handlers[task.Name]; !ok {
		return ErrUnknownTask
	}
	if task.MaxRetry == 0 {
		task.MaxRetry = 3
	}
	return lb.push(job{task: task})
}

func (lb *LocalBroker) push(j job) error {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	if lb.stopped {
		return ErrStopped
	}
	select {
	case lb.jobs <- j:
		return nil
	default:
		logger.Warning("local task queue full, dropping task", logger.LoggerOptions{Key: "task", Data: j.task.Name})
		return ErrQueueFull
	}
}

func (lb *LocalBroker) work() {
	defer lb.wg.Done()
	for {
		select {
		case <-lb.done:
			return
		case j := <-lb.jobs:
			lb.run(j)
		}
	}
}

func (lb *LocalBroker) run(j job) {
	timeout := time.Duration(j.task.TimeOut) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := lb.Handlers[j.task.Name](ctx, j.task.Payload)
	if err == nil {
		return
	}
	j.attempt++
	if j.attempt > j.task.MaxRetry {
		logger.Error("task failed, giving up", logger.LoggerOptions{Key: "task", Data: j.task.Name}, logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	logger.Warning("task failed, retrying", logger.LoggerOptions{Key: "task", Data: j.task.Name}, logger.LoggerOptions{Key: "attempt", Data: j.attempt}, logger.LoggerOptions{Key: "error", Data: err})
	time.AfterFunc(lb.RetryDelay, func() {
		if pushErr := lb.push(j); pushErr != nil && !errors.Is(pushErr, ErrStopped) {
			logger.Error("could not requeue task", logger.LoggerOptions{Key: "task", Data: j.task.Name}, logger.LoggerOptions{Key: "error", Data: pushErr})
		}
	})
}

func (lb *LocalBroker) Shutdown() {
	lb.init()
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.stopped {
		return
	}
	lb.stopped = true
	close(lb.done)
}
