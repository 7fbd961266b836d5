package main

// @title           NLQ Engine API
// @version         1.0
// @description     Natural-language questions over a relational database and an uploaded document collection.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd assembles the command tree. Configuration is resolved once in
// PersistentPreRunE and shared with the subcommands.
func newRootCmd() *cobra.Command {
	var (
		v   *viper.Viper
		cfg *Config
	)

	root := &cobra.Command{
		Use:           "nlq-engine",
		Short:         "Answer natural-language questions from a database and documents",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Missing .env is fine
			_ = godotenv.Load()

			var err error
			v, err = newViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err = loadConfig(v)
			if err != nil {
				return err
			}

			slog.SetDefault(newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("database-url", "", "database connection string (sqlite:///file.db or postgres://...)")
	flags.String("docs-dir", "", "directory for uploaded documents")
	flags.String("redis-url", "", "redis URL for the shared result cache")
	flags.String("routing-rules-file", "", "YAML file overriding the routing keywords")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	config := func() *Config { return cfg }
	root.AddCommand(
		newServeCmd(config),
		newAskCmd(config),
		newIngestCmd(config),
		newSchemaCmd(config),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(config func() *Config) *cobra.Command {
	var ingestExisting bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config()
			log.Printf("nlq-engine %s starting", version)

			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, cfg, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			a.connect(ctx)

			if ingestExisting {
				result, err := a.ingestDir(ctx)
				if err != nil {
					log.Printf("Warning: failed to index %s: %v", cfg.DocsDir, err)
				} else {
					log.Printf("Indexed %d chunks from %d files in %s", result.IndexedChunks, len(result.IndexedFiles), cfg.DocsDir)
				}
			}

			log.Printf("API server starting on %s:%d", cfg.Host, cfg.Port)
			return a.server(version).Start()
		},
	}

	cmd.Flags().String("host", "", "listen address")
	cmd.Flags().Int("port", 0, "listen port")
	cmd.Flags().String("cors-origins", "", "comma separated allowed origins")
	cmd.Flags().BoolVar(&ingestExisting, "ingest-existing", false, "index files already in the documents directory at startup")
	return cmd
}

func newAskCmd(config func() *Config) *cobra.Command {
	var docs []string

	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Answer one question and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, config(), slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			if len(docs) > 0 {
				if _, err := a.indexer.Ingest(ctx, docs); err != nil {
					return fmt.Errorf("failed to index documents: %w", err)
				}
			}
			a.connect(ctx)

			return printJSON(cmd.OutOrStdout(), a.router.Process(ctx, args[0]))
		},
	}

	cmd.Flags().StringSliceVar(&docs, "docs", nil, "documents to index before answering")
	return cmd
}

func newIngestCmd(config func() *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Index documents and report what was extracted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, config(), slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.indexer.Ingest(ctx, args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newSchemaCmd(config func() *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Connect to the database and print the discovered schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, config(), slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			schema := a.connect(ctx)
			if err := printJSON(cmd.OutOrStdout(), schema); err != nil {
				return err
			}
			if !schema.Discovered() {
				return fmt.Errorf("schema discovery failed")
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// redactDSN hides the password in a connection URL
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
