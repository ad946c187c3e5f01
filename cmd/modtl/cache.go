package main

import (
	"fmt"
	"io"

	"github.com/ZaguanLabs/modtl"
	"github.com/ZaguanLabs/modtl/cache"
	"github.com/ZaguanLabs/modtl/internal/config"
	"github.com/spf13/cobra"
)

func newCacheCmd(stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Export or import the translation memory",
		Long: `Export or import the translation memory of one language pair.

The store is selected with --cache or --cache-url and the language pair with
--src and --tgt, exactly as for a translation run.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "export FILE",
			Short: "Write the translation memory to a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cacheExport(cmd, args[0], stderr)
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Merge a JSON export into the translation memory",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cacheImport(cmd, args[0], stderr)
			},
		},
	)

	return cmd
}

// openStore opens the persistent translation memory for a cache subcommand.
func openStore(cmd *cobra.Command) (*config.Config, cache.EntrySource, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	if cfg.NoCacheFile && cfg.CacheURL == "" {
		return nil, nil, &modtl.ConfigError{Field: "no-cache-file", Message: "an in-memory translation memory cannot be exported or imported"}
	}
	// Dry-run semantics do not apply to cache maintenance.
	cfg.DryRun = false
	tm, err := openCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, tm, nil
}

func cacheExport(cmd *cobra.Command, path string, stderr io.Writer) error {
	cfg, tm, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer tm.Close()

	namespace := cache.Namespace(cfg.SourceLang, cfg.TargetLang)
	n, err := cache.NewExporter(tm, namespace).ExportToFile(path, map[string]string{
		"source": cfg.SourceLang,
		"target": cfg.TargetLang,
		"tool":   modtl.UserAgent(),
	})
	if err != nil {
		return fmt.Errorf("exporting translation memory: %w", err)
	}

	newLogger(cfg, stderr).Success("Exported %d entries (%s) to %s", n, namespace, path)
	return nil
}

func cacheImport(cmd *cobra.Command, path string, stderr io.Writer) error {
	cfg, tm, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer tm.Close()

	log := newLogger(cfg, stderr)
	res, err := cache.NewImporter(tm).ImportFromFile(path)
	if err != nil {
		return fmt.Errorf("importing translation memory: %w", err)
	}

	namespace := cache.Namespace(cfg.SourceLang, cfg.TargetLang)
	if res.Namespace != "" && res.Namespace != namespace {
		log.Warn("Export %s was taken from %s, imported into %s", path, res.Namespace, namespace)
	}
	if res.Failed > 0 {
		log.Warn("%d entries could not be stored", res.Failed)
	}
	log.Success("Imported %d entries into %s", res.Imported, namespace)
	return nil
}
