package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/inqilobchi/iqtibosbot/internal/batch"
	"github.com/inqilobchi/iqtibosbot/internal/config"
	"github.com/inqilobchi/iqtibosbot/internal/domain"
	"github.com/inqilobchi/iqtibosbot/internal/gate"
	"github.com/inqilobchi/iqtibosbot/internal/quotes"
	"github.com/inqilobchi/iqtibosbot/internal/render"
	"github.com/inqilobchi/iqtibosbot/internal/scheduler"
	"github.com/inqilobchi/iqtibosbot/internal/store"
	"github.com/inqilobchi/iqtibosbot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   *scheduler.Scheduler
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	return &App{cfg: cfg, log: log, bot: bot}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting iqtibosbot",
		zap.Int("port", a.cfg.Port),
		zap.String("bot", a.bot.Self.UserName),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open SQLite and run migrations. No store, no service.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	renderer, err := render.New()
	if err != nil {
		a.log.Error("renderer init failed", zap.Error(err))
		return err
	}

	g := gate.New(telegram.NewMemberLookup(a.bot), a.log)
	selector := quotes.New(repo, nil)
	batcher := batch.New[domain.User](batch.Config{}, a.log)

	a.router = telegram.NewRouter(a.bot, a.log, repo, g, batcher, a.cfg.AdminIDs(), a.cfg.Channel)
	a.sched = scheduler.New(repo, g, selector, renderer, a.router, batcher, a.cfg.Channel, a.log)

	webhookPath := "/webhook/" + a.cfg.BotToken
	mux := http.NewServeMux()
	mux.HandleFunc(webhookPath, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var upd tgbotapi.Update
		if err := json.NewDecoder(req.Body).Decode(&upd); err != nil {
			a.log.Warn("bad update payload", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// Flows outliving the request (broadcasts) hang off the app
		// context, not the request context.
		a.router.HandleUpdate(ctx, upd)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	a.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Webhook registration failure is degraded mode, not a crash: delivery
	// still runs, only inbound updates are lost until the next restart.
	a.registerWebhook(webhookPath)

	if err := a.sched.Start(ctx); err != nil {
		a.log.Error("scheduler start failed", zap.Error(err))
		return err
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	a.sched.Stop()
	if a.repo != nil {
		_ = a.repo.Close()
	}
	return nil
}

func (a *App) registerWebhook(path string) {
	if a.cfg.PublicURL == "" {
		a.log.Warn("PUBLIC_URL not set, skipping webhook registration")
		return
	}
	wh, err := tgbotapi.NewWebhook(a.cfg.PublicURL + path)
	if err != nil {
		a.log.Error("webhook config failed", zap.Error(err))
		return
	}
	if _, err := a.bot.Request(wh); err != nil {
		a.log.Error("webhook registration failed", zap.Error(err))
		return
	}
	a.log.Info("webhook set", zap.String("url", a.cfg.PublicURL+path))
}
