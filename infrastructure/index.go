package infrastructure

import (
	"context"
	"sync"

	"invigil.io/infrastructure/env"
	"invigil.io/infrastructure/logger"
	messagequeue "invigil.io/infrastructure/message_queue"
	startup "invigil.io/infrastructure/startUp"
)

type serverInterface interface {
	Start(ctx context.Context) error
}

// StartServer runs the http server and the task queue workers until ctx is cancelled.
func StartServer(ctx context.Context, cfg *env.Config) error {
	services, err := startup.StartServices(cfg, true)
	if err != nil {
		return err
	}
	defer services.CleanUpServices()

	var server serverInterface = &ginServer{services: services}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		messagequeue.StartQueue()
	}()

	err = server.Start(ctx)
	if err != nil {
		logger.Error("server stopped with an error", logger.LoggerOptions{Key: "error", Data: err})
	}
	messagequeue.TaskQueue.Shutdown()
	wg.Wait()
	return err
}

// StartWorker runs only the task queue, for deployments that split enrollment processing out of
// the api process.
func StartWorker(ctx context.Context, cfg *env.Config) error {
	services, err := startup.StartServices(cfg, false)
	if err != nil {
		return err
	}
	defer services.CleanUpServices()

	done := make(chan struct{})
	go func() {
		defer close(done)
		messagequeue.StartQueue()
	}()
	select {
	case <-ctx.Done():
		messagequeue.TaskQueue.Shutdown()
		<-done
	case <-done:
	}
	return nil
}
