package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kdziekansky/telegram2/internal/api"
	"github.com/kdziekansky/telegram2/internal/app/credit"
	"github.com/kdziekansky/telegram2/internal/bot"
	"github.com/kdziekansky/telegram2/internal/infra/observability"
	"github.com/kdziekansky/telegram2/internal/infra/openai"
	"github.com/kdziekansky/telegram2/internal/infra/sqlite"
	"github.com/kdziekansky/telegram2/internal/infra/telegram"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	Long: `Start the Telegram long-polling loop, the reminder worker and
(unless disabled) the local ops API. Runs until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg.Log)

	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	ledger := credit.NewLedger(db, log)
	catalog := credit.NewCatalog(cfg.Packages(), cfg.StarsOptions())
	purchases := credit.NewPurchaseFlow(ledger, catalog, nil)
	analytics := credit.NewAnalytics(db)
	tracer := observability.NewTracer(observability.DefaultTracerConfig())

	gw := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.BaseURL, log)
	completer := openai.New(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.ImageModel, cfg.LLM.VisionModel, cfg.RequestTimeout(), log)

	me, err := gw.GetMe(cmd.Context())
	if err != nil {
		return fmt.Errorf("telegram handshake: %w", err)
	}
	log.Info().Str("username", me.Username).Msg("connected to telegram")

	stores := bot.Stores{Users: db, Messages: db, Notes: db, Reminders: db, Codes: db}
	b := bot.New(&cfg, gw, stores, ledger, catalog, purchases, analytics, completer, tracer, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ops *http.Server
	if cfg.API.Enabled {
		srv := api.NewServer(db, ledger, catalog, analytics, tracer, log)
		if cfg.API.Metrics {
			srv.EnableMetrics()
		}
		api.Version = version

		addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
		ops = &http.Server{Addr: addr, Handler: srv.Handler()}
		go func() {
			log.Info().Str("addr", addr).Msg("ops API listening")
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("ops API failed")
			}
		}()
	}

	err = b.Run(ctx)

	if ops != nil {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ops.Shutdown(shutCtx); err != nil {
			log.Warn().Err(err).Msg("ops API shutdown")
		}
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
