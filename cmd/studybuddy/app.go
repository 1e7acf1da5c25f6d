package main

import (
	"context"
	"fmt"
	"time"

	"studybuddy/internal/api"
	"studybuddy/internal/chat"
	"studybuddy/internal/common/auth"
	awsclient "studybuddy/internal/common/aws"
	"studybuddy/internal/common/config"
	"studybuddy/internal/common/database"
	"studybuddy/internal/common/email"
	commonhttp "studybuddy/internal/common/http"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/common/observability"
	"studybuddy/internal/gateway"
	"studybuddy/internal/intake"
	"studybuddy/internal/review"
	"studybuddy/internal/search"
	"studybuddy/internal/store"
	createsubmission "studybuddy/internal/workers/intake/create-submission"
	generatesuggestion "studybuddy/internal/workers/intake/generate-suggestion"
	scorepreinterview "studybuddy/internal/workers/intake/score-pre-interview"
	sendnotification "studybuddy/internal/workers/intake/send-notification"
	validateintake "studybuddy/internal/workers/intake/validate-intake"
	updateassignment "studybuddy/internal/workers/review/update-assignment"
	"studybuddy/pkg/registry"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
)

// application holds every long-lived handle built from config.
type application struct {
	cfg    *config.Config
	logger logger.Logger
	obs    *observability.Observability

	db    *database.SQLClient
	store *store.SQLStore
	redis *redis.Client
	es    *elasticsearch.Client
	index *search.Index

	gateway *gateway.Gateway

	validate *validateintake.Handler
	score    *scorepreinterview.Handler
	suggest  *generatesuggestion.Handler
	create   *createsubmission.Handler
	notify   *sendnotification.Handler
	assign   *updateassignment.Handler

	workflow  *intake.Workflow
	dashboard *review.Dashboard
	admin     *review.Admin
	counselor *review.CounselorView
	chat      *chat.Service

	closers []func()
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*database.SQLClient, *store.SQLStore, error) {
	db, err := database.NewSQL(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database ping: %w", err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, store.NewSQLStore(db, log), nil
}

func buildApplication(ctx context.Context, cfg *config.Config, log logger.Logger, obs *observability.Observability) (*application, error) {
	a := &application{cfg: cfg, logger: log, obs: obs}

	db, st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.db, a.store = db, st
	a.closers = append(a.closers, func() { db.Close() })

	if cfg.Database.Redis.Address != "" {
		a.redis = database.NewRedis(cfg.Database.Redis)
		a.closers = append(a.closers, func() { a.redis.Close() })
	}

	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.es = es
		a.index = search.New(es, cfg.Database.Elasticsearch.Index, log)
		if err := a.index.EnsureIndex(ctx); err != nil {
			// intake and admin search both tolerate a missing index
			log.Warn("search index unavailable at startup", map[string]interface{}{"error": err.Error()})
		}
	}

	a.gateway = gateway.New(newGenerator(ctx, cfg, log), gateway.Options{
		Timeout:     config.GetDuration(cfg.APIs.Timeout),
		MaxTokens:   cfg.APIs.MaxTokens,
		Temperature: cfg.APIs.Temperature,
	}, log)

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildHandlers(ctx, reg); err != nil {
		a.Close()
		return nil, err
	}

	deps := intake.Deps{
		Validator:     a.validate,
		Suggester:     a.gateway,
		Creator:       a.create,
		Notifier:      a.notify,
		Observability: obs,
	}
	if a.index != nil {
		deps.Indexer = a.index
	}
	a.workflow = intake.New(deps, cfg.App.BookingLink, log)

	gate := auth.NewGate(cfg.Auth.AdminSecret, cfg.Auth.CounselorSecret, cfg.Auth.Counselors)
	var searcher review.Searcher
	if a.index != nil {
		searcher = a.index
	}
	a.dashboard = review.NewDashboard(st)
	a.admin = review.NewAdmin(gate, st, a.assign, searcher, log)
	a.counselor = review.NewCounselorView(gate, st)

	ttl := config.GetDuration(cfg.Chat.SessionTTL)
	var transcripts chat.TranscriptStore = chat.NewMemoryStore(ttl)
	if a.redis != nil {
		transcripts = chat.NewRedisStore(a.redis, ttl)
	}
	a.chat = chat.NewService(transcripts, a.gateway, cfg.Chat.Greeting, log)

	return a, nil
}

// newGenerator falls back to an always-failing provider so the gateway serves
// canned text instead of refusing to start.
func newGenerator(ctx context.Context, cfg *config.Config, log logger.Logger) gateway.Generator {
	var (
		gen gateway.Generator
		err error
	)
	switch cfg.APIs.Provider {
	case "openai":
		gen, err = gateway.NewOpenAIGenerator(commonhttp.NewClient(0), gateway.OpenAIOptions{
			BaseURL:     cfg.APIs.OpenAI.BaseURL,
			APIKey:      cfg.APIs.OpenAI.APIKey,
			Model:       cfg.APIs.OpenAI.Model,
			MaxTokens:   cfg.APIs.MaxTokens,
			Temperature: cfg.APIs.Temperature,
		})
	default:
		gen, err = gateway.NewGenAIGenerator(ctx, gateway.GenAIOptions{
			APIKey: cfg.APIs.Gemini.APIKey,
			Model:  cfg.APIs.Gemini.Model,
		})
	}
	if err != nil {
		log.Warn("suggestion provider unavailable, using fallback text", map[string]interface{}{
			"provider": cfg.APIs.Provider,
			"error":    err.Error(),
		})
		return gateway.Unavailable(cfg.APIs.Provider, err)
	}
	return gen
}

func (a *application) buildHandlers(ctx context.Context, reg *registry.ActivityRegistry) error {
	cfg, log := a.cfg, a.logger

	vcfg := validateintake.LoadConfig()
	vcfg.InputSchema = reg.InputSchemaFor(validateintake.TaskType)
	a.validate = validateintake.NewHandler(vcfg, log)

	scfg := scorepreinterview.LoadConfig()
	scfg.InputSchema = reg.InputSchemaFor(scorepreinterview.TaskType)
	a.score = scorepreinterview.NewHandler(scfg, log)

	gcfg := generatesuggestion.LoadConfig()
	gcfg.InputSchema = reg.InputSchemaFor(generatesuggestion.TaskType)
	a.suggest = generatesuggestion.NewHandler(gcfg, a.gateway, log)

	ccfg := createsubmission.LoadConfig()
	ccfg.InputSchema = reg.InputSchemaFor(createsubmission.TaskType)
	a.create = createsubmission.NewHandler(ccfg, a.store, log)

	ucfg := updateassignment.LoadConfig(cfg.Auth.Counselors)
	ucfg.InputSchema = reg.InputSchemaFor(updateassignment.TaskType)
	a.assign = updateassignment.NewHandler(ucfg, a.store, log)

	ncfg := sendnotification.LoadConfig()
	ncfg.EmailEnabled = cfg.Notifications.Email.Enabled
	ncfg.SMSEnabled = cfg.Notifications.SMS.Enabled
	ncfg.EmailProvider = cfg.Notifications.Email.Provider
	ncfg.BookingLink = cfg.App.BookingLink
	ncfg.InputSchema = reg.InputSchemaFor(sendnotification.TaskType)

	mailer, err := newEmailSender(ctx, cfg)
	if err != nil {
		return err
	}
	texter, err := newSMSSender(ctx, cfg)
	if err != nil {
		return err
	}
	a.notify = sendnotification.NewHandler(ncfg, mailer, texter, log)
	return nil
}

func newEmailSender(ctx context.Context, cfg *config.Config) (sendnotification.EmailSender, error) {
	if !cfg.Notifications.Email.Enabled {
		return nil, nil
	}
	if cfg.Notifications.Email.Provider == "ses" {
		from := cfg.Integrations.AWS.SES.FromEmail
		if from == "" {
			from = cfg.Notifications.Email.FromEmail
		}
		return awsclient.NewSESClient(ctx, cfg.Integrations.AWS.Region, from)
	}
	smtpCfg := cfg.Integrations.SMTP
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     smtpCfg.Host,
		Port:     smtpCfg.Port,
		Username: smtpCfg.Username,
		Password: smtpCfg.Password,
		From:     cfg.Notifications.Email.FromEmail,
		UseTLS:   smtpCfg.UseTLS,
	}), nil
}

// newSMSSender returns an untyped nil when SMS is off so the handler sees no sender.
func newSMSSender(ctx context.Context, cfg *config.Config) (sendnotification.SMSSender, error) {
	if !cfg.Notifications.SMS.Enabled {
		return nil, nil
	}
	return awsclient.NewSNSClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.DefaultSMSSenderID)
}

func (a *application) apiDeps() api.Deps {
	checks := []api.Check{{Name: "database", Fn: a.db.Ping}}
	if a.redis != nil {
		checks = append(checks, api.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return database.PingRedis(ctx, a.redis)
		}})
	}
	if a.es != nil {
		checks = append(checks, api.Check{Name: "elasticsearch", Fn: func(ctx context.Context) error {
			return database.PingElasticsearch(ctx, a.es)
		}})
	}
	return api.Deps{
		Intake:      a.workflow,
		Dashboard:   a.dashboard,
		Admin:       a.admin,
		Counselor:   a.counselor,
		Chat:        a.chat,
		Submissions: a.store,
		Checks:      checks,
	}
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func requestTimeout(cfg *config.Config) time.Duration {
	return config.GetDuration(cfg.Server.RequestTimeout)
}
