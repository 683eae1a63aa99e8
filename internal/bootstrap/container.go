package bootstrap

import (
	"context"
	"log"

	"biz-assistant-be/internal/config"
	"biz-assistant-be/internal/controller"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/internal/repository/memory"
	"biz-assistant-be/internal/repository/unitofwork"
	"biz-assistant-be/internal/service"
	"biz-assistant-be/pkg/clarify"
	"biz-assistant-be/pkg/classifier"
	"biz-assistant-be/pkg/classifier/factory"
	"biz-assistant-be/pkg/events"
	"biz-assistant-be/pkg/fsm"
	"biz-assistant-be/pkg/gateway"
	"biz-assistant-be/pkg/idempotency"
	"biz-assistant-be/pkg/intent"
	pkgNats "biz-assistant-be/pkg/nats"
	"biz-assistant-be/pkg/pipeline"
	"biz-assistant-be/pkg/recovery"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const auditTopic = "audit.events"

type Container struct {
	// Controllers
	WebhookController       controller.IWebhookController
	SessionController       controller.ISessionController
	ClarificationController controller.IClarificationController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	RecoveryManager *recovery.Manager
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	// 2. Event bus: hot path publishes in-process, the consumer forwards to
	// NATS off the request path.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	auditPublisher := service.NewAuditPublisher(pubSub, auditTopic)

	var natsForwarder events.Publisher
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		natsForwarder = natsPub
	}

	consumerService := service.NewConsumerService(
		pubSub,
		auditTopic,
		natsForwarder,
		auditLogger,
	)

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// 3. Session core
	engine := fsm.NewEngine(uowFactory, auditPublisher, sysLogger)
	guard := idempotency.NewGuard(uowFactory, rdb, auditPublisher, sysLogger, cfg.Idempotency.TTL)
	clarifier := clarify.NewManager(uowFactory, auditPublisher, sysLogger, cfg.Clarification.TTL)
	recoveryManager := recovery.NewManager(uowFactory, engine, clarifier, guard, auditPublisher, sysLogger, cfg.Recovery.Threshold)
	turnCache := memory.NewTurnCache(cfg.Session.InactivityThreshold, cfg.Session.TurnWindowSize)

	// 4. Classifier
	provider, err := factory.NewProvider(
		cfg.Classifier.Provider,
		cfg.Classifier.Model,
		cfg.Classifier.BaseURL,
		cfg.Classifier.APIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize classifier provider: %v", err)
	}
	log.Printf("[INFO] Using classifier provider: %s (%s)", cfg.Classifier.Provider, cfg.Classifier.Model)
	llmClassifier := classifier.NewLLMClassifier(provider, sysLogger, cfg.Classifier.Timeout)

	// 5. Outbound gateway
	var sender gateway.Sender
	if cfg.Gateway.OutboundURL != "" {
		sender = gateway.NewHTTPSender(cfg.Gateway.OutboundURL, cfg.Gateway.Token, cfg.Gateway.Timeout)
	} else {
		log.Printf("[WARN] No gateway outbound URL configured, replies only go back in webhook responses")
		sender = gateway.NoopSender{}
	}

	// 6. Services
	sessionService := service.NewSessionService(uowFactory, engine, auditPublisher, sysLogger, cfg.Session)
	clarificationService := service.NewClarificationService(clarifier)

	orchestrator := pipeline.NewOrchestrator(
		sessionService,
		guard,
		clarifier,
		llmClassifier,
		engine,
		pipeline.DefaultRegistry(),
		sender,
		uowFactory,
		turnCache,
		sysLogger,
		pipeline.Config{
			FastPathThreshold: cfg.Routing.FastPathThreshold,
			Tiers:             cfg.Routing.PriorityTiers,
			TurnWindow:        cfg.Session.TurnWindowSize,
			RouterConfig: intent.Config{
				MinConfidence:      cfg.Routing.MinConfidence,
				ClarifyEpsilon:     cfg.Routing.ClarifyEpsilon,
				ContinuationMargin: cfg.Routing.ContinuationMargin,
				RecentActivityMax:  cfg.Routing.RecentActivityMax,
			},
		},
	)
	assistantService := service.NewAssistantService(orchestrator, sysLogger)

	// 7. Controllers
	return &Container{
		WebhookController:       controller.NewWebhookController(assistantService, cfg.Gateway.Token),
		SessionController:       controller.NewSessionController(sessionService),
		ClarificationController: controller.NewClarificationController(clarificationService),

		ConsumerService: consumerService,
		RecoveryManager: recoveryManager,
	}
}
