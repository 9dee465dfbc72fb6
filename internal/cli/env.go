package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nb2rs/dtx/internal/config"
	"github.com/nb2rs/dtx/internal/content"
	"github.com/nb2rs/dtx/internal/dice"
	"github.com/nb2rs/dtx/internal/observability"
	"github.com/nb2rs/dtx/internal/scripting"
)

// env is the wired runtime of one command invocation.
type env struct {
	cfg     config.Config
	logger  *zap.Logger
	scripts *scripting.Manager
	catalog *content.Catalog
}

// setup loads configuration, applies flag overrides, and builds the catalog.
//
// Postcondition: on success the caller must call close.
func setup(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.TablesDir != "" {
		cfg.Content.TablesDir = opts.TablesDir
	}
	if opts.ScriptsDir != "" {
		cfg.Content.ScriptsDir = opts.ScriptsDir
	}
	if cmd.Flags().Changed("seed") {
		cfg.RNG.Crypto = false
		cfg.RNG.Seed = opts.Seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger}

	src := dice.NewCryptoSource()
	if !cfg.RNG.Crypto {
		src = dice.NewSeededSource(cfg.RNG.Seed)
	}

	if cfg.Content.ScriptsDir != "" {
		e.scripts = scripting.NewManager(cfg.Scripting.InstructionLimit, logger)
		if err := e.scripts.LoadDir(cfg.Content.ScriptsDir); err != nil {
			e.close()
			return nil, err
		}
	}

	defs, err := content.LoadDefinitions(cfg.Content.TablesDir)
	if err != nil {
		e.close()
		return nil, err
	}
	e.catalog, err = content.Build(defs, content.Options{Source: src, Scripts: e.scripts, Logger: logger})
	if err != nil {
		e.close()
		return nil, err
	}
	logger.Debug("catalog ready",
		zap.Int("tables", len(defs)),
		zap.Bool("crypto", cfg.RNG.Crypto),
	)
	return e, nil
}

func (e *env) table(id string) (content.Table, error) {
	t, ok := e.catalog.Table(id)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", id)
	}
	return t, nil
}

func (e *env) close() {
	if e.scripts != nil {
		e.scripts.Close()
	}
	_ = e.logger.Sync()
}

// TargetOptions holds the flags describing the roll target.
type TargetOptions struct {
	Level int
	Luck  float64
	Tags  []string
	Args  map[string]string
}

func (o *TargetOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.Level, "level", 1, "target level")
	cmd.Flags().Float64Var(&o.Luck, "luck", 0, "target luck")
	cmd.Flags().StringSliceVar(&o.Tags, "tag", nil, "target tag (repeatable)")
	cmd.Flags().StringToStringVar(&o.Args, "arg", nil, "roll argument key=value (repeatable)")
}

func (o *TargetOptions) context() content.Context {
	return content.Context{Level: o.Level, Luck: o.Luck, Tags: o.Tags}
}
