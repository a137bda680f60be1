package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	llmx "github.com/tala-demo/recoveries-agent/agent/llm"
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
	Port             int    `envconfig:"PORT" default:"3000"`
	FallbackDemoData bool   `envconfig:"FALLBACK_DEMO_DATA" split_words:"true" default:"true"`
	RemindersEnabled bool   `envconfig:"REMINDERS_ENABLED" split_words:"true" default:"false"`
	ReminderURL      string `envconfig:"REMINDER_URL" split_words:"true"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	var dataStore contractx.DataStore
	if appCfg.FallbackDemoData {
		log.Warn().Msg("serving seeded demo data, not a database")
		dataStore = memory.NewDemoStore()
	} else {
		db := postgres.Open(*configx.MustNew[postgres.Config]("POSTGRES"))
		store, err := postgres.NewStore(db)
		if err != nil {
			log.Fatal().Err(err).Msg("init postgres store")
		}
		dataStore = store
	}

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	provider, err := openrouterx.NewClient(llmCfg.OpenRouterFor(llmx.RoleNegotiation))
	if err != nil {
		log.Fatal().Err(err).Msg("init openrouter client")
	}

	opts := []toolx.Option{}
	if appCfg.RemindersEnabled && appCfg.ReminderURL != "" {
		reminders := qstashx.MustNew(*configx.MustNew[qstashx.Config]("QSTASH"))
		opts = append(opts, toolx.WithReminders(reminders, appCfg.ReminderURL))
	}

	dispatcher, err := toolx.New(dataStore, provider, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("init tool dispatcher")
	}

	engine := router.New(router.Config{
		Health: handler.NewHealthHandler("Tala Recoveries Tool Server"),
		Tools:  handler.NewToolsHandler(dispatcher),
	})

	addr := fmt.Sprintf(":%d", appCfg.Port)
	log.Info().Str("addr", addr).Int("tools", len(dispatcher.Registry().List())).Msg("tool server listening")
	if err := engine.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("tool server stopped")
	}
}
