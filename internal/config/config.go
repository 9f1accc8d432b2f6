package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		TelegramAPIToken string   `env:"TOKEN,required"`
		DataDir          string   `env:"DATA_DIR,default=~/.modguard"`
		EnabledHandlers  []string `env:"HANDLERS,default=admin,vocabulary,moderation,chatops,membership,reactor"`
		LogLevel         int      `env:"LOG_LEVEL,default=4"`
		MetricsAddr      string   `env:"METRICS_ADDR,default=:2112"`

		// OwnerSecret gates the one-time /addowner self-enrollment. An empty
		// secret disables the bootstrap path entirely.
		OwnerSecret string `env:"OWNER_SECRET"`

		AntiSpam AntiSpam
	}

	AntiSpam struct {
		MuteDuration time.Duration `env:"ANTISPAM_MUTE_DURATION,default=5m"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("MG_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		dataDir, err := homedir.Expand(cfg.DataDir)
		if err != nil {
			globalErr = fmt.Errorf("expand data dir: %w", err)
			return
		}
		cfg.DataDir = dataDir
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
