package asynq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"invigil.io/infrastructure/logger"
	mq_types "invigil.io/infrastructure/message_queue/types"
)

var ErrClientNotStarted = errors.New("asynq client not connected")

type AsynqBroker struct {
	Addr        string
	Password    string
	Concurrency int
	Handlers    map[mq_types.Queues]mq_types.TaskHandler

	Client *asynq.Client
	server *asynq.Server
	once   sync.Once
	done   chan struct{}
}

func (aq *AsynqBroker) stopped() chan struct{} {
	aq.once.Do(func() { aq.done = make(chan struct{}) })
	return aq.done
}

func (aq *AsynqBroker) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     aq.Addr,
		Password: aq.Password,
	}
}

// Connect opens the producer side. Processes that only enqueue never call Start.
func (aq *AsynqBroker) Connect() {
	if aq.Client == nil {
		aq.Client = asynq.NewClient(aq.redisOpt())
	}
}

func (aq *AsynqBroker) Start() error {
	aq.Connect()
	concurrency := aq.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	aq.server = asynq.NewServer(
		aq.redisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				string(mq_types.High):   7,
				string(mq_types.Medium): 2,
				string(mq_types.Low):    1,
			},
			Logger: asynqLogger{},
		},
	)

	mux := asynq.NewServeMux()
	for name, handler := range aq.Handlers {
		h := handler
		mux.HandleFunc(string(name), func(ctx context.Context, t *asynq.Task) error {
			return h(ctx, t.Payload())
		})
	}
	logger.Info("asynq worker starting", logger.LoggerOptions{Key: "concurrency", Data: concurrency})
	if err := aq.server.Start(mux); err != nil {
		return err
	}
	<-aq.stopped()
	return nil
}

func (aq *AsynqBroker) Enqueue(ctx context.Context, task mq_types.QueueTask) error {
	if aq.Client == nil {
		return ErrClientNotStarted
	}
	if task.TimeOut == 0 {
		task.TimeOut = 60
	}
	if task.MaxRetry == 0 {
		task.MaxRetry = 10
	}
	if task.Priority == "" {
		task.Priority = mq_types.Medium
	}
	_, err := aq.Client.EnqueueContext(ctx, asynq.NewTask(string(task.Name), task.Payload),
		asynq.ProcessIn(time.Duration(task.ProcessIn)*time.Second),
		asynq.MaxRetry(task.MaxRetry),
		asynq.Timeout(time.Second*time.Duration(task.TimeOut)),
		asynq.Queue(string(task.Priority)))
	if err != nil {
		logger.Error("failed to enqueue task", logger.LoggerOptions{Key: "task", Data: task.Name}, logger.LoggerOptions{Key: "error", Data: err})
	}
	return err
}

// Shutdown stops the worker and closes the producer. Calls after the first are no-ops.
func (aq *AsynqBroker) Shutdown() {
	done := aq.stopped()
	select {
	case <-done:
		return
	default:
		close(done)
	}
	if aq.server != nil {
		aq.server.Shutdown()
	}
	if aq.Client != nil {
		aq.Client.Close()
	}
}

// asynqLogger routes the worker's own logs through the application logger.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) {}

func (asynqLogger) Info(args ...interface{}) {
	logger.Info("asynq", logger.LoggerOptions{Key: "message", Data: args})
}

func (asynqLogger) Warn(args ...interface{}) {
	logger.Warning("asynq", logger.LoggerOptions{Key: "message", Data: args})
}

func (asynqLogger) Error(args ...interface{}) {
	logger.Error("asynq", logger.LoggerOptions{Key: "message", Data: args})
}

func (asynqLogger) Fatal(args ...interface{}) {
	logger.Error("asynq fatal", logger.LoggerOptions{Key: "message", Data: args})
}
