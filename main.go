// main.go
//
// Command line entry point for the Tusmo server.
//   - tusmo            → same as "tusmo serve"
//   - tusmo serve      → run the HTTP server until SIGINT/SIGTERM
//   - tusmo migrate    → apply database migrations and exit
//   - tusmo word       → show the daily word number (and word with --reveal)

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/tusmo/internal/accounts"
	"github.com/robalobadob/tusmo/internal/config"
	"github.com/robalobadob/tusmo/internal/daily"
	"github.com/robalobadob/tusmo/internal/httpserver"
	"github.com/robalobadob/tusmo/internal/session"
	"github.com/robalobadob/tusmo/internal/store"
	"github.com/robalobadob/tusmo/internal/words"
)

const shutdownTimeout = 15 * time.Second

var (
	envFiles []string
	cfg      config.Config

	wordDate   string
	wordReveal bool
)

var rootCmd = &cobra.Command{
	Use:           "tusmo",
	Args:          cobra.NoArgs,
	Short:         "Tusmo word game server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(envFiles...); err != nil {
			return err
		}
		zerolog.SetGlobalLevel(cfg.Level())
		if !cfg.Production {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		}
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context(), cfg.DatabasePath)
		if err != nil {
			return err
		}
		return db.Close()
	},
}

var wordCmd = &cobra.Command{
	Use:   "word",
	Short: "Show the daily word for a date",
	Long: `Show the daily game number and word length for a date (UTC).

The word itself is only printed with --reveal.`,
	RunE: runWord,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env file(s) to load (default .env when present)")
	wordCmd.Flags().StringVar(&wordDate, "date", "", "date as YYYY-MM-DD (default: today)")
	wordCmd.Flags().BoolVar(&wordReveal, "reveal", false, "print the word itself")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(wordCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("tusmo")
		stop()
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src, err := words.Load(cfg.DailyWordsFile, cfg.DictionaryFile)
	if err != nil {
		return err
	}
	d, all := src.Stats()
	log.Info().Int("daily", d).Int("dictionary", all).Msg("word lists loaded")

	db, err := openDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	results := daily.NewStore(db)
	hub := session.New(session.Options{
		Words:     src,
		KV:        store.NewSQLite(db),
		Ledger:    results,
		Log:       log.Logger,
		QueueSize: cfg.SaveQueueSize,
		IdleTTL:   cfg.PlayerIdle,
	})

	srv := httpserver.New(cfg, httpserver.Deps{
		Hub:     hub,
		Words:   src,
		Users:   accounts.NewStore(db),
		Results: results,
		Log:     log.Logger,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err = <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(sctx); serr != nil {
		log.Warn().Err(serr).Msg("http shutdown")
	}
	// Flush queued saves before the database closes.
	if herr := hub.Close(sctx); herr != nil {
		log.Warn().Err(herr).Msg("save queue not drained")
	}
	return err
}

func runWord(cmd *cobra.Command, args []string) error {
	src, err := words.Load(cfg.DailyWordsFile, cfg.DictionaryFile)
	if err != nil {
		return err
	}
	t := time.Now().UTC()
	if wordDate != "" {
		if t, err = time.Parse(time.DateOnly, wordDate); err != nil {
			return fmt.Errorf("--date: %w", err)
		}
	}
	w := src.Daily(t)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tusmo #%d (%s): %d letters, starts with %s\n", src.DailyNumber(t), daily.DateKey(t), len(w), w[:1])
	if wordReveal {
		fmt.Fprintln(out, w)
	}
	return nil
}
