package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"outreach-service/internal/auth"
	"outreach-service/internal/cache"
	"outreach-service/internal/config"
	"outreach-service/internal/consumer"
	"outreach-service/internal/dispatch"
	"outreach-service/internal/draft"
	"outreach-service/internal/entitlement"
	"outreach-service/internal/events"
	"outreach-service/internal/handler"
	"outreach-service/internal/payment"
	"outreach-service/internal/repository"
	"outreach-service/internal/scraper"
	"outreach-service/internal/sender"
	"outreach-service/internal/server"
	"outreach-service/internal/service"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)
	log.Info("Starting outreach service...")

	if err := godotenv.Load(".env"); err != nil {
		log.Warn("Could not load .env file.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.WithError(err).Fatal("Invalid logging configuration")
	}

	if err := repository.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}
	log.Info("Database migration successfully applied")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	redisCache, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to Redis")
	}
	defer redisCache.Close()

	userRepository := repository.NewPostgresUserRepository(db)
	paymentRepository := repository.NewPostgresPaymentRepository(db)
	emailRepository := repository.NewPostgresEmailRepository(db)

	entitlements := entitlement.NewStore(userRepository)
	sessions := auth.NewSessions(userRepository, redisCache, cfg.SessionTTL)
	engine := dispatch.NewEngine(dispatch.Options{
		Concurrency: cfg.SendConcurrency,
		SendTimeout: cfg.SendTimeout,
		Logs:        emailRepository,
	})

	smtpRelay := sender.Factory{Host: cfg.SMTPHost, Port: cfg.SMTPPort}
	campaigns := service.NewCampaignService(
		scraper.NewHTTPFetcher(cfg.ScrapeTimeout),
		entitlements,
		engine,
		func(senderEmail, senderPassword string) dispatch.Transport {
			return smtpRelay.New(senderEmail, senderPassword)
		},
	)

	var publisher payment.DecisionPublisher
	var kafkaPublisher *events.KafkaPublisher
	if cfg.KafkaEnabled() {
		log.WithField("kafka_servers", cfg.KafkaBootstrapServers).Info("Connecting to Kafka")
		producer, err := events.NewProducer(cfg.KafkaBootstrapServers)
		if err != nil {
			log.WithError(err).Fatal("Failed to create Kafka producer")
		}
		kafkaPublisher = events.NewKafkaPublisher(producer, cfg.KafkaTopic)
		publisher = kafkaPublisher
	} else {
		log.Warn("KAFKA_BOOTSTRAP_SERVERS is not set. Payment decision events are disabled.")
	}

	workflow := payment.NewWorkflow(paymentRepository, entitlements, publisher)

	h := handler.New(sessions, entitlements, campaigns, draft.NewService(redisCache), workflow)
	router := handler.NewRouter(handler.RouterDeps{
		Handler:   h,
		Health:    handler.NewHealthHandler(handler.PingFunc(db.PingContext), redisCache),
		Sessions:  sessions,
		Approvers: auth.NewApproverVerifier(cfg.ApproverTokenHash),
		Logger:    log.StandardLogger(),
	})

	srv := server.New(router, cfg.AppPort, cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout)

	if kafkaPublisher != nil {
		srv.OnShutdown("kafka-producer", kafkaPublisher.Close)
		if cfg.NotificationsEnabled() {
			startDecisionConsumer(ctx, cfg, srv, engine)
		} else {
			log.Warn("SMTP environment variables are not set. Payment decision emails are disabled.")
		}
	}

	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

// startDecisionConsumer mails every payment decision from the system account.
func startDecisionConsumer(ctx context.Context, cfg *config.Config, srv *server.Server, engine *dispatch.Engine) {
	notifier := service.NewNotificationService(
		engine,
		sender.NewSMTPEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom),
		cfg.MailFrom,
	)

	kc, err := consumer.NewConsumer(cfg.KafkaBootstrapServers, cfg.KafkaGroupID)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Kafka consumer")
	}
	decisionConsumer, err := consumer.NewKafkaConsumer(kc, cfg.KafkaTopic, handler.NewPaymentDecisionHandler(notifier))
	if err != nil {
		log.WithError(err).Fatal("Failed to subscribe to topic")
	}

	consumerCtx, stop := context.WithCancel(ctx)
	go func() {
		if err := decisionConsumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Kafka consumer stopped")
		}
	}()

	srv.OnShutdown("kafka-consumer", func(ctx context.Context) error {
		stop()
		select {
		case <-decisionConsumer.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		return decisionConsumer.Close()
	})
}
