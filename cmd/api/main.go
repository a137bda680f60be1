package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tala-demo/recoveries-agent/agent/agents/negotiator"
	"github.com/tala-demo/recoveries-agent/agent/agents/orchestrator"
	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	llmx "github.com/tala-demo/recoveries-agent/agent/llm"
	promptx "github.com/tala-demo/recoveries-agent/agent/prompt"
	ptpx "github.com/tala-demo/recoveries-agent/agent/ptp"
	statex "github.com/tala-demo/recoveries-agent/agent/state"
	toolx "github.com/tala-demo/recoveries-agent/agent/tool"
	"github.com/tala-demo/recoveries-agent/api/handler"
	"github.com/tala-demo/recoveries-agent/api/router"
	configx "github.com/tala-demo/recoveries-agent/pkg/config"
	_ "github.com/tala-demo/recoveries-agent/pkg/logger/autoload"
	openrouterx "github.com/tala-demo/recoveries-agent/pkg/openrouter"
	qstashx "github.com/tala-demo/recoveries-agent/pkg/qstash"
	"github.com/tala-demo/recoveries-agent/storage/memory"
	"github.com/tala-demo/recoveries-agent/storage/postgres"
)

type AppConfig struct {
	Port       int    `envconfig:"PORT" default:"8000"`
	CustomerID string `envconfig:"CUSTOMER_ID" split_words:"true" default:"CUST001"`
	LoanID     string `envconfig:"LOAN_ID" split_words:"true" default:"LOAN12345"`

	// Demo-data seam: serve the seeded in-memory dataset instead of
	// Postgres. Never enable in production.
	FallbackDemoData bool `envconfig:"FALLBACK_DEMO_DATA" split_words:"true" default:"true"`

	// When set, tool calls go to the standalone tool server instead of
	// the in-process dispatcher.
	MCPServerURL string `envconfig:"MCP_SERVER_URL" split_words:"true"`

	SessionBackend   string `envconfig:"SESSION_BACKEND" split_words:"true" default:"memory"`
	RemindersEnabled bool   `envconfig:"REMINDERS_ENABLED" split_words:"true" default:"false"`
	ReminderURL      string `envconfig:"REMINDER_URL" split_words:"true"`
}

func main() {
	ctx := context.Background()
	appCfg := configx.MustNew[AppConfig]("")

	dataStore := buildDataStore(appCfg)
	sessionStore := buildSessionStore(appCfg)

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	provider, err := openrouterx.NewClient(llmCfg.OpenRouterFor(llmx.RoleNegotiation))
	if err != nil {
		log.Fatal().Err(err).Msg("init openrouter client")
	}

	dispatcher := buildDispatcher(appCfg, dataStore, provider)

	var gateway contractx.ToolGateway = dispatcher
	if appCfg.MCPServerURL != "" {
		gateway, err = toolx.NewHTTPGateway(toolx.HTTPGatewayConfig{BaseURL: appCfg.MCPServerURL})
		if err != nil {
			log.Fatal().Err(err).Msg("init tool gateway")
		}
		log.Info().Str("url", appCfg.MCPServerURL).Msg("dispatching tools over http")
	}

	prompts := promptx.NewLoader(*configx.MustNew[promptx.RemoteConfig]("PROMPT"))
	registry, err := negotiator.NewRegistry(ctx, *llmCfg, prompts, dispatcher.Registry().Infos(
		toolx.ToolGetCustomerInfo,
		toolx.ToolGetLoanDetails,
		toolx.ToolRecordPTP,
	))
	if err != nil {
		log.Fatal().Err(err).Msg("init model registry")
	}

	rules := configx.MustNew[ptpx.Rules]("PTP")
	orch, err := orchestrator.New(sessionStore, registry, gateway, orchestrator.Config{
		CustomerID: appCfg.CustomerID,
		LoanID:     appCfg.LoanID,
		Rules:      *rules,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init orchestrator")
	}

	engine := router.New(router.Config{
		Health: handler.NewHealthHandler("Tala Recoveries API"),
		Chat:   handler.NewChatHandler(orch),
	})

	addr := fmt.Sprintf(":%d", appCfg.Port)
	log.Info().Str("addr", addr).Msg("recoveries api listening")
	if err := engine.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("api server stopped")
	}
}

func buildDataStore(cfg *AppConfig) contractx.DataStore {
	if cfg.FallbackDemoData {
		log.Warn().Msg("serving seeded demo data, not a database")
		return memory.NewDemoStore()
	}
	db := postgres.Open(*configx.MustNew[postgres.Config]("POSTGRES"))
	store, err := postgres.NewStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("init postgres store")
	}
	return store
}

func buildSessionStore(cfg *AppConfig) statex.Store {
	if cfg.SessionBackend == "redis" {
		store, err := statex.NewUpstashRedisStore(*configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS"))
		if err != nil {
			log.Fatal().Err(err).Msg("init redis session store")
		}
		return store
	}
	return statex.NewMemoryStore()
}

func buildDispatcher(cfg *AppConfig, store contractx.DataStore, provider contractx.CompletionProvider) *toolx.Dispatcher {
	opts := []toolx.Option{}
	if cfg.RemindersEnabled && cfg.ReminderURL != "" {
		reminders := qstashx.MustNew(*configx.MustNew[qstashx.Config]("QSTASH"))
		opts = append(opts, toolx.WithReminders(reminders, cfg.ReminderURL))
	}

	dispatcher, err := toolx.New(store, provider, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("init tool dispatcher")
	}
	return dispatcher
}
