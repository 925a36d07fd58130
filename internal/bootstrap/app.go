package bootstrap

import (
	"context"
	"database/sql"

	"github.com/gin-gonic/gin"

	"energydocs-backend/internal/analyses"
	"energydocs-backend/internal/llm"
	"energydocs-backend/internal/llm/anthropic"
	"energydocs-backend/internal/research"
	"energydocs-backend/internal/risk"
	"energydocs-backend/internal/shared/config"
	"energydocs-backend/internal/shared/metrics"
	"energydocs-backend/internal/shared/server"
	"energydocs-backend/internal/shared/storage/db"
	"energydocs-backend/internal/shared/telemetry"
)

// App bundles the wired process: router plus the resources main must close.
type App struct {
	Router *gin.Engine
	DB     *sql.DB
}

// New wires configuration into a runnable application. Postgres and the LLM
// provider degrade gracefully: a missing database falls back to in-memory
// storage and a missing API key to the placeholder client, so local dev works
// with zero setup.
func New(ctx context.Context, cfg config.Config) *App {
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			telemetry.Error("bootstrap.db_connect", map[string]any{"err": err.Error()})
		} else if err := db.RunMigrations(ctx, conn); err != nil {
			telemetry.Error("bootstrap.db_migrate", map[string]any{"err": err.Error()})
			conn.Close()
		} else {
			sqlDB = conn
		}
	}

	var repo analyses.Repo
	if sqlDB != nil {
		repo = &analyses.PGRepo{DB: sqlDB}
	} else {
		telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "no database"})
		repo = analyses.NewMemoryRepo()
	}

	rules := loadRules(cfg)
	metrics.SetRiskRulesLoaded(len(rules))

	client := buildLLMClient(cfg)
	var researcher analyses.EntityResearcher
	if prompt, ok := client.(llm.PromptClient); ok && cfg.ResearchEnabled {
		researcher = research.NewFetcher(prompt, cfg.ResearchTimeout)
	}

	svc := &analyses.Service{
		Repo:            repo,
		Tasks:           analyses.NewMemoryTaskCache(),
		LLM:             client,
		Research:        researcher,
		Rules:           rules,
		UploadDir:       cfg.UploadDir,
		ResearchEnabled: cfg.ResearchEnabled && researcher != nil,
	}

	router := server.NewRouter(cfg, server.RouterDeps{
		Analyses: analyses.NewHandler(svc),
	})

	return &App{Router: router, DB: sqlDB}
}

// Close releases process-lifetime resources.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// loadRules reads the operator-supplied rule file when RISK_RULES_PATH is
// set, otherwise the embedded defaults. A load failure degrades to an empty
// rule set so a malformed rule file never blocks document analysis.
func loadRules(cfg config.Config) []risk.Rule {
	var rules []risk.Rule
	if cfg.RiskRulesPath != "" {
		loaded, err := risk.LoadFile(cfg.RiskRulesPath)
		if err != nil {
			telemetry.Error("bootstrap.risk_rules", map[string]any{
				"path": cfg.RiskRulesPath,
				"err":  err.Error(),
			})
		} else {
			rules = loaded
		}
	} else {
		rules = risk.Default()
	}
	if len(rules) == 0 {
		telemetry.Error("bootstrap.risk_rules_empty", map[string]any{
			"path": cfg.RiskRulesPath,
			"note": "no risk rules loaded; analyses will carry no flags",
		})
	}
	return rules
}

func buildLLMClient(cfg config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "anthropic":
		client, err := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.LLMModel)
		if err != nil {
			telemetry.Error("bootstrap.llm", map[string]any{"provider": cfg.LLMProvider, "err": err.Error()})
			return llm.PlaceholderClient{}
		}
		return client
	default:
		telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}
	}
}
