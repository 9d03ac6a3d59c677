package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pivot/internal/config"
	ferrors "git.home.luguber.info/inful/pivot/internal/foundation/errors"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
	In     io.Reader
	Err    io.Writer
}

// NewGlobal wires the process streams.
func NewGlobal(logger *slog.Logger) *Global {
	if logger == nil {
		logger = slog.Default()
	}
	return &Global{Logger: logger, Out: os.Stdout, In: os.Stdin, Err: os.Stderr}
}

func (g *Global) errWriter() io.Writer {
	if g.Err == nil {
		return os.Stderr
	}
	return g.Err
}

// CLI definition and global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default: PIVOT_CONFIG, then pivot.yaml, pivot.yml, config/pivot.yaml, config/pivot.yml)"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text or json); defaults to monitoring.logging.format"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	ValidateConfig ValidateConfigCmd `cmd:"" name:"validate-config" help:"Load and validate the configuration file"`
	Run            RunCmd            `cmd:"" help:"Sync repositories and plan pending documentation files (dry run unless --execute)"`
	Status         StatusCmd         `cmd:"" help:"Show the last processed commit of each repository"`
	Reset          ResetCmd          `cmd:"" help:"Forget processed commits so the next run starts over"`
	History        HistoryCmd        `cmd:"" help:"Show recent runs from the run ledger"`
	Watch          WatchCmd          `cmd:"" help:"Run periodically and reload the configuration on change"`
	Init           InitCmd           `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; it sets up logging once from flags.
func (c *CLI) AfterApply() error {
	format := strings.ToLower(strings.TrimSpace(c.LogFormat))
	if format != "" && format != "text" && format != "json" {
		return ferrors.ValidationError(fmt.Sprintf("unsupported log format %q (want text or json)", c.LogFormat)).Build()
	}
	level := config.LogLevelInfo
	if c.Verbose {
		level = config.LogLevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, level, config.NormalizeLogFormat(format)))
	return nil
}

// loadConfig loads the configuration and applies its logging settings unless
// flags already decided them.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	logging := cfg.Monitoring.Logging
	level, format := logging.Level, logging.Format
	if c.Verbose {
		level = config.LogLevelDebug
	}
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	logger := newLogger(g.errWriter(), level, format)
	slog.SetDefault(logger)
	g.Logger = logger
	return cfg, nil
}

func newLogger(w io.Writer, level config.LogLevel, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
