package bootstrap

import (
	"context"
	"log"
	"time"

	"cardes-ai-be/internal/config"
	"cardes-ai-be/internal/controller"
	"cardes-ai-be/internal/pkg/logger"
	"cardes-ai-be/internal/repository/unitofwork"
	"cardes-ai-be/internal/service"
	"cardes-ai-be/pkg/genai"
	pkgNats "cardes-ai-be/pkg/nats"
	"cardes-ai-be/pkg/ratelimit"
	"cardes-ai-be/pkg/tts"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	CategoryController controller.ICategoryController
	CardSetController  controller.ICardSetController
	CardController     controller.ICardController
	TtsController      controller.ITtsController
	UserController     controller.IUserController

	// Background services (exposed for main.go to run)
	ActivityConsumerService service.IActivityConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is optional; activity mirroring degrades to logging only
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 3. Rate-limit store: Redis when reachable, in-process otherwise
	var kvStore ratelimit.Store
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory rate-limit store", err)
		kvStore = ratelimit.NewMemoryStore()
	} else {
		kvStore = ratelimit.NewRedisStore(rdb)
	}

	limiter := ratelimit.NewLimiter(kvStore, ratelimit.NewMessagePicker(time.Now().UnixNano()), ratelimit.LimiterConfig{
		MaxSessionMessages: cfg.Chat.MaxSessionMessages,
		Cooldown:           cfg.Chat.Cooldown,
	})
	usageCounter := ratelimit.NewUsageCounter(kvStore)

	// 4. Upstream clients
	genaiClient := genai.NewClient(cfg.Keys.GoogleGemini,
		genai.WithRetryPolicy(genai.RetryPolicy{
			MaxAttempts: cfg.Chat.MaxRetries,
			BaseDelay:   cfg.Chat.BaseBackoff,
		}),
	)
	ttsClient := tts.NewClient(cfg.Keys.ElevenLabs, cfg.Tts.VoiceID)

	// 5. Services
	activityPublisher := service.NewActivityPublisherService(pubSub, cfg.Chat.ActivityTopic, sysLogger)
	activityConsumer := service.NewActivityConsumerService(pubSub, cfg.Chat.ActivityTopic, natsPub, sysLogger)

	chatService := service.NewChatService(
		uowFactory,
		limiter,
		genaiClient,
		activityPublisher,
		sysLogger,
		cfg.Chat.RequestTimeout,
		cfg.Chat.MaxSessionMessages,
	)
	deckService := service.NewDeckService(uowFactory)
	userService := service.NewUserService(uowFactory)
	ttsService := service.NewTtsService(
		ttsClient,
		usageCounter,
		userService,
		activityPublisher,
		sysLogger,
		cfg.Tts.DailyLimit,
	)

	// 6. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService),
		CategoryController: controller.NewCategoryController(deckService),
		CardSetController:  controller.NewCardSetController(deckService),
		CardController:     controller.NewCardController(deckService),
		TtsController:      controller.NewTtsController(ttsService),
		UserController:     controller.NewUserController(userService),

		ActivityConsumerService: activityConsumer,

		Logger: sysLogger,
	}
}
