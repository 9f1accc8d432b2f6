package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/modguard/modguard/internal/admins"
	"github.com/modguard/modguard/internal/antispam"
	"github.com/modguard/modguard/internal/bot"
	"github.com/modguard/modguard/internal/config"
	"github.com/modguard/modguard/internal/confirm"
	"github.com/modguard/modguard/internal/handlers"
	"github.com/modguard/modguard/internal/infra"
	"github.com/modguard/modguard/internal/lifecycle"
	"github.com/modguard/modguard/internal/observability"
	"github.com/modguard/modguard/internal/platform/telegram"
	"github.com/modguard/modguard/internal/roles"
	"github.com/modguard/modguard/internal/settings"
	"github.com/modguard/modguard/internal/stats"
	"github.com/modguard/modguard/internal/store"
	"github.com/modguard/modguard/internal/triggers"
	"github.com/modguard/modguard/internal/warns"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02 15:04:05",
		QuoteEmptyFields: true,
	})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatalln("cant load config")
	}
	log.SetLevel(log.Level(cfg.LogLevel))

	workDir := infra.GetWorkDir(cfg.DataDir)
	lock, err := store.AcquireLock(workDir)
	if err != nil {
		log.WithError(err).Fatalln("cant lock data dir")
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.WithError(err).Errorln("cant release data dir lock")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := observability.Init(ctx, filepath.Join(workDir, "moderation.log")); err != nil {
		log.WithError(err).Fatalln("cant initialize observability")
	}

	roster := admins.NewRoster(store.Open(filepath.Join(workDir, "admins.json")))
	settingsStore := settings.New(store.Open(filepath.Join(workDir, "settings.json")))
	warnLedger := warns.NewLedger(store.Open(filepath.Join(workDir, "warns.json")))
	statsTracker := stats.NewTracker(store.Open(filepath.Join(workDir, "stats.json")))
	triggerIndex := triggers.Load(filepath.Join(workDir, "trigger.txt"))

	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		log.WithError(err).Errorln("cant initialize bot api")
		time.Sleep(1 * time.Second)
		log.Fatalln("exiting")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}

	chatPlatform := telegram.New(botAPI)
	service := bot.NewService(botAPI, chatPlatform)

	deps := &handlers.Deps{
		Service:  service,
		Roles:    roles.NewResolver(roster, chatPlatform),
		Admins:   roster,
		Settings: settingsStore,
		Warns:    warnLedger,
		Stats:    statsTracker,
		Triggers: triggerIndex,
		Limiter:  antispam.NewLimiter(),
		Confirm:  confirm.NewTracker(),
	}

	bot.RegisterUpdateHandler("admin", handlers.NewAdmin(deps))
	bot.RegisterUpdateHandler("vocabulary", handlers.NewVocabulary(deps))
	bot.RegisterUpdateHandler("moderation", handlers.NewModeration(deps))
	bot.RegisterUpdateHandler("chatops", handlers.NewChatOps(deps))
	bot.RegisterUpdateHandler("membership", handlers.NewMembership(deps))
	bot.RegisterUpdateHandler("reactor", handlers.NewReactor(deps))

	if roster.Count() == 0 {
		log.Warnln("no bot admins configured, use MG_OWNER_SECRET and /addowner to enroll")
	}
	log.WithFields(log.Fields{
		"bot":        botAPI.Self.UserName,
		"words":      triggerIndex.Count(),
		"bot_admins": roster.Count(),
		"data_dir":   workDir,
	}).Infoln("starting")

	runtime := lifecycle.NewRuntime(
		observability.NewMetricsServer(cfg.MetricsAddr),
		bot.NewUpdatePump(botAPI, bot.NewUpdateProcessor(service)),
	)
	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start runtime")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Infoln("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := runtime.Stop(stopCtx); err != nil {
		log.WithError(err).Errorln("unclean shutdown")
	}
}
