// Package appctx wires the matching core into one explicit application
// context, replacing the teacher's am package global-singleton pattern
// (see internal/config's package doc): every dependency is constructed
// here and threaded through, never reached for via a package-level var.
package appctx

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/aliastable"
	"github.com/sbvh/collegematch/internal/cachelayer"
	"github.com/sbvh/collegematch/internal/candidate"
	"github.com/sbvh/collegematch/internal/config"
	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/db"
	"github.com/sbvh/collegematch/internal/llmconsensus"
	"github.com/sbvh/collegematch/internal/masterindex"
	"github.com/sbvh/collegematch/internal/masterstore"
	"github.com/sbvh/collegematch/internal/matcherr"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/pipeline"
	"github.com/sbvh/collegematch/internal/rowstore"
	"github.com/sbvh/collegematch/internal/scorer"
	"github.com/sbvh/collegematch/internal/statealias"
	"github.com/sbvh/collegematch/internal/verify"
)

// Context holds every long-lived dependency cmd/collegematch's commands
// need. Built once per process invocation by New, closed by Close.
type Context struct {
	Config *config.Config
	Log    *zap.SugaredLogger

	DB      *sql.DB
	Master  *masterstore.Store
	Rows    *rowstore.Store
	Index   *masterindex.Index
	Cache   *cachelayer.CacheLayer
	LLM     *llmconsensus.Cache
	Verify  *verify.Verifier
	Streams *coursestream.Mapper
	States  *statealias.Aliaser
	Aliases *aliastable.Table

	Orchestrator *pipeline.Orchestrator
}

// Options controls what New builds beyond the config file's own settings;
// CLI flags (--llm on|off) map onto these.
type Options struct {
	ConfigPath  string
	DBPath      string
	LLMOverride *bool // nil: defer to config.LLM.Enabled
}

// New opens the database, loads config, builds MasterIndex from the
// current snapshot, and wires every core package together. Callers must
// call Close when done.
func New(opts Options, log *zap.SugaredLogger) (*Context, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(opts.DBPath, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, log); err != nil {
		conn.Close()
		return nil, err
	}

	ctx, err := build(cfg, conn, opts, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ctx, nil
}

func build(cfg *config.Config, conn *sql.DB, opts Options, log *zap.SugaredLogger) (*Context, error) {
	master := masterstore.New(conn, log)
	rows := rowstore.New(conn, log)

	llmEnabled := cfg.LLM.Enabled
	if opts.LLMOverride != nil {
		llmEnabled = *opts.LLMOverride
	}

	versionHash, err := master.VersionHash()
	if err != nil {
		return nil, err
	}
	llmCache := llmconsensus.NewCache(conn, versionHash, log)

	cache := cachelayer.New(conn, master, llmCache, log)
	invalidation, err := cache.CheckAndInvalidate()
	if err != nil {
		return nil, err
	}
	if invalidation.Changed {
		llmCache = llmconsensus.NewCache(conn, invalidation.NewHash, log)
	}

	index, err := buildIndex(master, invalidation.NewHash)
	if err != nil {
		return nil, err
	}

	streams := coursestream.New()
	if len(cfg.Streams.PriorityOverrides) > 0 {
		streams.SetOverrides(toStreamOverrides(cfg.Streams.PriorityOverrides))
	}

	states := statealias.New()

	aliases := aliastable.New(model.AliasCollege)
	aliasRows, err := master.LoadAliases()
	if err != nil {
		return nil, err
	}
	aliases.Load(aliasRows)

	gen := candidate.New(candidate.IndexAdapter{Inner: index}, states, streams, candidate.DefaultK)
	sc := scorer.New(cfg.Weights, index, states)

	guardian := verify.NewGuardian(streams, states)
	engine, err := buildConsensusEngine(cfg, llmCache, llmEnabled)
	if err != nil {
		return nil, err
	}
	verifier := verify.New(guardian, engine, cfg.Thresholds, llmEnabled)

	orch := pipeline.New(rows, gen, sc, aliases, states, streams, master, master, verifier, cfg.Thresholds, log)

	return &Context{
		Config: cfg, Log: log,
		DB: conn, Master: master, Rows: rows, Index: index,
		Cache: cache, LLM: llmCache, Verify: verifier,
		Streams: streams, States: states, Aliases: aliases,
		Orchestrator: orch,
	}, nil
}

func buildIndex(master *masterstore.Store, versionHash string) (*masterindex.Index, error) {
	snapshot, err := master.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	return masterindex.Build(snapshot.Colleges, snapshot.Courses, snapshot.States, versionHash)
}

func buildConsensusEngine(cfg *config.Config, cache *llmconsensus.Cache, llmEnabled bool) (*llmconsensus.Engine, error) {
	if !llmEnabled || len(cfg.LLM.Models) == 0 {
		return nil, nil
	}

	soft := time.Duration(cfg.LLM.TimeoutSoftS) * time.Second
	hard := time.Duration(cfg.LLM.TimeoutHardS) * time.Second

	providers := make([]llmconsensus.Provider, 0, len(cfg.LLM.Models))
	for i, modelName := range cfg.LLM.Models {
		endpoint := ""
		if i < len(cfg.LLM.Endpoints) {
			endpoint = cfg.LLM.Endpoints[i]
		}
		providers = append(providers, llmconsensus.NewHTTPProvider(modelName, endpoint, modelName, soft))
	}

	engineCfg := llmconsensus.Config{
		Enabled:                  llmEnabled,
		ConsensusRequiredApprove: cfg.LLM.ConsensusRequiredApprovals,
		TimeoutSoft:              soft,
		TimeoutHard:              hard,
	}
	return llmconsensus.NewEngine(providers, engineCfg, cache), nil
}

func toStreamOverrides(cfg []config.StreamOverride) []coursestream.Override {
	overrides := make([]coursestream.Override, 0, len(cfg))
	for _, o := range cfg {
		overrides = append(overrides, coursestream.Override{
			Contains: o.Contains,
			Prefix:   o.Prefix,
			Streams:  o.Streams,
		})
	}
	return overrides
}

// Close releases the database connection.
func (c *Context) Close() error {
	if c.DB == nil {
		return nil
	}
	if err := c.DB.Close(); err != nil {
		return matcherr.Wrap(err, "closing database")
	}
	return nil
}
