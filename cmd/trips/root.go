package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tripetl/internal/config"

	// register all backends with the storage factory.
	_ "tripetl/internal/storage/all"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logFormat  string
	verbose    bool

	getenv func(string) string
}

func execute(args []string, getenv func(string) string) int {
	root := newRootCmd(getenv)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	if getenv == nil {
		getenv = os.Getenv
	}
	opts := &rootOptions{getenv: getenv}

	root := &cobra.Command{
		Use:           "trips",
		Short:         "Fetch and reconcile monthly taxi trip extracts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "pipeline config file (.json, .yaml, .yml)")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logs")

	root.AddCommand(
		newRunCmd(opts),
		newPlanCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

// addWindowFlags registers the flags that override the pipeline file.
func addWindowFlags(fs *pflag.FlagSet) {
	fs.String("start", "", "window start date YYYY-MM-DD (overrides "+config.EnvStartDate+")")
	fs.String("end", "", "window end date YYYY-MM-DD, exclusive (overrides "+config.EnvEndDate+")")
	fs.StringSlice("variant", nil, "taxi type to fetch; repeatable (overrides BRUIN_VARS.taxi_types)")
	fs.Int("workers", 0, "concurrent fetches")
}

// loadPipeline resolves the effective configuration with precedence
// flag > env > file > default.
func (o *rootOptions) loadPipeline(fs *pflag.FlagSet) (config.Pipeline, error) {
	var p config.Pipeline
	if o.configPath != "" {
		var err error
		if p, err = config.Load(o.configPath); err != nil {
			return config.Pipeline{}, err
		}
	}
	p = config.ApplyEnv(p, o.getenv)

	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "start":
			p.Window.StartDate = f.Value.String()
		case "end":
			p.Window.EndDate = f.Value.String()
		case "variant":
			p.Variants, err = fs.GetStringSlice("variant")
		case "workers":
			p.Runtime.FetchWorkers, err = fs.GetInt("workers")
		}
	})
	if err != nil {
		return config.Pipeline{}, err
	}
	return p.WithDefaults(), nil
}

// checkPipeline prints lint findings and fails on errors.
func checkPipeline(w io.Writer, p config.Pipeline) error {
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid")
	}
	return nil
}

func (o *rootOptions) logger(w io.Writer) (*slog.Logger, error) {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(o.logFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("unknown --log-format %q; want text or json", o.logFormat)
	}
}
