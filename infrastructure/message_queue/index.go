package messagequeue

import (
	"invigil.io/infrastructure/logger"
	"invigil.io/infrastructure/message_queue/asynq"
	"invigil.io/infrastructure/message_queue/local"
	mq_types "invigil.io/infrastructure/message_queue/types"
)

var TaskQueue mq_types.TaskQueueBroker

// NewTaskQueue picks the redis backed broker when redisAddr is set and the in-process one otherwise.
func NewTaskQueue(redisAddr string, redisPassword string, handlers map[mq_types.Queues]mq_types.TaskHandler) mq_types.TaskQueueBroker {
	if redisAddr == "" {
		logger.Warning("redis not configured, tasks run in process")
		return &local.LocalBroker{Handlers: handlers}
	}
	broker := &asynq.AsynqBroker{Addr: redisAddr, Password: redisPassword, Handlers: handlers}
	broker.Connect()
	return broker
}

func StartQueue() {
	if err := TaskQueue.Start(); err != nil {
		logger.Error("task queue stopped with an error", logger.LoggerOptions{Key: "error", Data: err})
	}
}
