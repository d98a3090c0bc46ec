package startup

import (
	"context"

	"invigil.io/application/constants"
	"invigil.io/application/controller"
	"invigil.io/application/repository"
	"invigil.io/application/services/enrollment"
	"invigil.io/application/services/monitoring"
	registration_usecases "invigil.io/application/usecases/registration"
	session_usecases "invigil.io/application/usecases/session"
	"invigil.io/infrastructure/auth"
	"invigil.io/infrastructure/database"
	redisClient "invigil.io/infrastructure/database/connection/cache"
	"invigil.io/infrastructure/database/repository/cache"
	"invigil.io/infrastructure/env"
	fileupload "invigil.io/infrastructure/file_upload"
	"invigil.io/infrastructure/ipresolver"
	"invigil.io/infrastructure/logger"
	messagequeue "invigil.io/infrastructure/message_queue"
	queue_tasks "invigil.io/infrastructure/message_queue/tasks"
	mq_types "invigil.io/infrastructure/message_queue/types"
	"invigil.io/infrastructure/messaging/emails"
	"invigil.io/infrastructure/vision"
)

// Services is what the server and worker commands run on.
type Services struct {
	Config   *env.Config
	Tokens   *auth.SessionTokens
	Sessions *repository.SessionStore
	Engine   *monitoring.Engine

	vision *vision.Services
	cancel context.CancelFunc
}

// localRefresh stands in for redis pub/sub when only one process runs.
type localRefresh struct {
	engine *monitoring.Engine
}

func (l localRefresh) Publish(ctx context.Context, _ string, userID string) error {
	return l.engine.Refresh(ctx, userID)
}

// StartServices connects the stores and builds the monitoring engine, the enrollment pipeline and
// the task queue. loadSignatures is false for worker only processes that never monitor frames.
func StartServices(cfg *env.Config, loadSignatures bool) (*Services, error) {
	logger.InitializeLogger()
	if err := database.SetUpDatabase(cfg); err != nil {
		logger.Error("could not connect to the database", logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}
	fileupload.InitialiseSnapshotStore(fileupload.Options{
		AzureAccountName:   cfg.Storage.AzureAccountName,
		AzureAccountKey:    cfg.Storage.AzureAccountKey,
		AzureContainerName: cfg.Storage.AzureContainerName,
		Dir:                cfg.Storage.SnapshotDir,
	})

	ipresolver.InitialiseIPResolver(cfg.Session.GeoIPDBPath)

	ctx, cancel := context.WithCancel(context.Background())
	services := &Services{
		Config:   cfg,
		Tokens:   auth.NewSessionTokens(cfg.Session.SigningKey, cfg.Session.TTL),
		Sessions: repository.NewSessionStore(),
		vision:   vision.NewServices(cfg.Vision),
		cancel:   cancel,
	}
	candidates := repository.NewCandidateStore()
	alerts := repository.NewMonitoringStore()

	var redisRepo *cache.RedisRepository
	var cooldown monitoring.Cooldown = monitoring.NewMemoryCooldown(cfg.Monitor.AlertCooldown)
	var counter monitoring.Counter = monitoring.NewMemoryCounter(constants.SAMPLING_COUNTER_TTL)
	redisAddr := ""
	if redisClient.Client != nil {
		redisRepo = cache.NewRedisRepository(redisClient.Client)
		cooldown = monitoring.NewRedisCooldown(redisRepo, cfg.Monitor.AlertCooldown)
		counter = monitoring.NewRedisCounter(redisRepo, constants.SAMPLING_COUNTER_TTL)
		redisAddr = cfg.Redis.Addr
	}

	metrics, err := monitoring.NewMetrics(nil)
	if err != nil {
		logger.Warning("monitoring metrics disabled", logger.LoggerOptions{Key: "error", Data: err})
	}

	handlers := map[mq_types.Queues]mq_types.TaskHandler{}
	notifier := &queue_tasks.AlertNotifier{}
	if cfg.Email.ResendAPIKey != "" {
		handlers[queue_tasks.HandleAlertEmailTaskName] = queue_tasks.HandleAlertEmailTask(emails.NewResendService(cfg.Email.ResendAPIKey, cfg.Email.DefaultSender))
		notifier.To = cfg.Email.ProctorEmail
	}

	recorder := monitoring.NewAlertRecorder(alerts, fileupload.SnapshotStore, notifier, metrics)
	services.Engine = monitoring.NewEngine(monitoring.Options{
		Detector:   services.vision.Detector,
		Encoder:    services.vision.Encoder,
		TextReader: services.vision.TextReader,
		Candidates: candidates,
		Cooldown:   cooldown,
		Recorder:   recorder,
		Metrics:    metrics,
		Tolerance:  cfg.Monitor.FaceTolerance,
	})

	var publisher enrollment.Publisher = localRefresh{engine: services.Engine}
	if redisRepo != nil {
		publisher = redisRepo
	}
	pipeline := enrollment.NewPipeline(candidates, enrollment.NewFFmpegExtractor(cfg.FFmpeg, constants.FRAMES_PER_SECOND, constants.MAX_ENROLL_FRAMES), services.vision.Encoder, publisher)
	handlers[queue_tasks.HandleProcessEnrollmentTaskName] = queue_tasks.HandleProcessEnrollmentTask(pipeline)
	messagequeue.TaskQueue = messagequeue.NewTaskQueue(redisAddr, cfg.Redis.Password, handlers)
	notifier.Queue = messagequeue.TaskQueue

	if loadSignatures {
		count, err := services.Engine.Load(ctx)
		if err != nil {
			logger.Error("could not load face signatures", logger.LoggerOptions{Key: "error", Data: err})
		} else {
			logger.Info("face signatures loaded", logger.LoggerOptions{Key: "count", Data: count})
		}
		if redisRepo != nil {
			if err = services.Engine.ListenForRefresh(ctx, redisRepo); err != nil {
				logger.Warning("signature refresh subscription failed", logger.LoggerOptions{Key: "error", Data: err})
			}
		}
	}

	sessionUseCases := &session_usecases.SessionUseCases{
		Candidates: candidates,
		Sessions:   services.Sessions,
		Tokens:     services.Tokens,
		TTL:        cfg.Session.TTL,
	}
	if ipresolver.IPResolverInstance != nil {
		sessionUseCases.Locations = ipresolver.IPResolverInstance
	}

	controller.Services = &controller.Dependencies{
		Registration: &registration_usecases.RegistrationUseCases{
			Store:    candidates,
			Queue:    messagequeue.TaskQueue,
			Schedule: queue_tasks.EnqueueEnrollment,
		},
		Sessions:  sessionUseCases,
		Monitor:   services.Engine,
		Telemetry: monitoring.NewTelemetry(alerts, recorder, counter, cfg.Monitor.MouseSampleEvery),
		Alerts:    alerts,
	}
	return services, nil
}

// CleanUpServices releases what StartServices acquired.
func (s *Services) CleanUpServices() {
	s.cancel()
	if messagequeue.TaskQueue != nil {
		messagequeue.TaskQueue.Shutdown()
	}
	s.vision.Close()
	ipresolver.CleanUp()
	database.CleanUp()
	logger.Sync()
}
