// Command modtl translates localization and mod files in place.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaguanLabs/modtl"
	"github.com/ZaguanLabs/modtl/cache"
	"github.com/ZaguanLabs/modtl/internal/config"
	"github.com/ZaguanLabs/modtl/internal/console"
	"github.com/ZaguanLabs/modtl/processor"
	"github.com/ZaguanLabs/modtl/provider"
	"github.com/ZaguanLabs/modtl/runner"
	"github.com/spf13/cobra"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = modtl.FullVersion()
	commit    = modtl.GitCommit
	buildDate = modtl.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "modtl [flags] PATH...",
		Short: modtl.Description,
		Long: `modtl translates the strings of localization and mod files in place.

Files and directories are accepted; directories are walked recursively for
.json, .yaml, .yml, .xml, .html, .htm, .properties, .txt, .po and .pot files.
Translations are remembered in a translation memory so that re-runs and
repeated strings never call the provider twice.

Configuration is read from flags, MODTL_* environment variables, an optional
modtl.yaml file and a .env file, in that order of precedence.`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return translate(cmd.Context(), cmd, args, stdout, stderr)
		},
	}
	root.SetVersionTemplate(modtl.Name + " {{.Version}}\n")

	// Persistent so the cache subcommands resolve the same namespace and store.
	config.RegisterFlags(root.PersistentFlags())

	_ = root.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			config.ProviderDeepL + "\tDeepL API (DEEPL_API_KEY)",
			config.ProviderOpenAI + "\tOpenAI-compatible chat API (OPENAI_API_KEY)",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newVersionCmd(stdout),
		newCacheCmd(stderr),
	)

	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "%s %s\n", modtl.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
			}
		},
	}
}

func newLogger(cfg *config.Config, stderr io.Writer) *console.Logger {
	return console.New(stderr, console.WithQuiet(cfg.Quiet), console.WithVerbose(cfg.Verbose))
}

func translate(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	skip, err := cfg.SkipPattern()
	if err != nil {
		return err
	}

	log := newLogger(cfg, stderr)
	if cfg.ConfigFile != "" {
		log.Debug("Using config file: %s", cfg.ConfigFile)
	}

	tm, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := tm.Close(); err != nil {
			log.Error("Closing translation memory: %v", err)
		}
	}()

	opts := []modtl.PolicyOption{
		modtl.WithCache(tm),
		modtl.WithSkipPattern(skip),
		modtl.WithErrorHandler(log.ErrorHandler()),
	}
	if cfg.SkipTargetLang {
		opts = append(opts, modtl.WithTargetLangGuard())
	}
	policy := modtl.NewPolicy(newProvider(cfg, log), cfg.SourceLang, cfg.TargetLang, opts...)

	registry := processor.DefaultRegistry(cfg.TargetLang)
	files, errs := runner.Discover(args, registry)
	for _, err := range errs {
		log.Warn("%v", err)
	}
	if len(files) == 0 {
		log.Warn("No files to translate")
		return nil
	}
	log.Debug("Discovered %d files", len(files))

	if cfg.Backup && !cfg.DryRun {
		dir := runner.BackupDirName(time.Now())
		if err := runner.Backup(files, dir); err != nil {
			return err
		}
		log.Success("Backed up files to: %s", dir)
	}

	runOpts := []runner.Option{
		runner.WithJobs(cfg.Jobs),
		runner.WithLogger(log),
	}
	if cfg.DryRun {
		runOpts = append(runOpts, runner.WithDryRun(stdout))
	}
	if cfg.Progress && !cfg.Quiet {
		runOpts = append(runOpts, runner.WithProgress(console.NewProgressBar(len(files), stderr)))
	}

	start := time.Now()
	runLog := runner.New(registry, policy, runOpts...).Run(ctx, files)
	elapsed := time.Since(start).Round(time.Millisecond)

	if cfg.DryRun {
		log.Success("Dry run finished in %s: %d files, %d errors", elapsed, len(runLog.Rows), runLog.Errors())
		return ctx.Err()
	}

	if err := runLog.WriteCSV(cfg.LogPath); err != nil {
		log.Error("Writing log: %v", err)
	}

	t := runLog.Totals
	log.Success("Done in %s: %d files, %d errors, %d translated, %d cached, %d failed",
		elapsed, len(runLog.Rows), runLog.Errors(), t.Translated, t.Cached, t.Failed)
	log.Info("Log: %s", cfg.LogPath)
	if !cfg.NoCacheFile && cfg.CacheURL == "" {
		log.Info("Cache: %s", cfg.CachePath)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}

// newProvider builds the configured backend. Retries wrap the rate limiter
// so every attempt is spaced by the delay.
func newProvider(cfg *config.Config, log *console.Logger) modtl.Provider {
	var p modtl.Provider
	switch cfg.Provider {
	case config.ProviderOpenAI:
		p = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.Endpoint,
		})
	default:
		p = provider.NewDeepLProvider(provider.DeepLConfig{
			APIKey:   cfg.APIKey,
			Endpoint: cfg.Endpoint,
		})
	}

	p = modtl.NewRateLimitedProvider(p, cfg.Delay)

	if cfg.Retries > 0 {
		rc := modtl.DefaultRetryConfig()
		rc.MaxRetries = cfg.Retries
		rc.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn("Retry %d/%d in %s: %v", attempt, cfg.Retries, delay, err)
		}
		p = modtl.NewRetryableProvider(p, rc)
	}
	return p
}

// openCache opens the translation memory selected by the configuration. A
// dry run never creates a cache file.
func openCache(cfg *config.Config) (cache.EntrySource, error) {
	namespace := cache.Namespace(cfg.SourceLang, cfg.TargetLang)

	switch {
	case cfg.CacheURL != "":
		c, err := cache.NewRedisCache(cache.RedisConfig{URL: cfg.CacheURL, Namespace: namespace})
		if err != nil {
			return nil, &modtl.ConfigError{Field: "cache-url", Message: "cannot open translation memory", Cause: err}
		}
		return c, nil
	case cfg.NoCacheFile:
		return cache.NewInMemoryCache(), nil
	}

	if cfg.DryRun {
		if _, err := os.Stat(cfg.CachePath); errors.Is(err, os.ErrNotExist) {
			return cache.NewInMemoryCache(), nil
		}
	}

	c, err := cache.NewSQLiteCache(cfg.CachePath, namespace)
	if err != nil {
		return nil, &modtl.ConfigError{Field: "cache", Message: "cannot open translation memory", Cause: err}
	}
	return c, nil
}
