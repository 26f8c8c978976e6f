package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cryptip/tipjar/internal/controller"
	"github.com/cryptip/tipjar/internal/feed"
	"github.com/cryptip/tipjar/internal/identity"
	"github.com/cryptip/tipjar/internal/ledger"
)

var (
	rootCmd = &cobra.Command{
		Use:   "tipjar",
		Short: "Tip-jar session service for the cryptip contract",
	}
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}).Level(zerolog.InfoLevel)

	configPath := rootCmd.PersistentFlags().StringP("config", "c", "tipjar.yml", "path to YAML config file")
	if err := rootCmd.MarkFlagRequired("config"); err != nil {
		log.Panic().Err(err).Msg("config command line arg is required")
		return
	}
	if err := rootCmd.Execute(); err != nil {
		log.Panic().Err(err).Msg("command line execute")
		return
	}

	cfg, err := Load(*configPath)
	if err != nil {
		log.Err(err).Msg("")
		return
	}
	if cfg.Tipjar.MaxCPU > 0 {
		runtime.GOMAXPROCS(cfg.Tipjar.MaxCPU)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.LevelInfoValue
	}

	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Panic().Err(err).Msg("parsing log level")
		return
	}
	zerolog.SetGlobalLevel(logLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		file = short
		return file + ":" + strconv.Itoa(line)
	}
	log.Logger = log.Logger.With().Caller().Logger()

	ctx, cancel := context.WithCancel(context.Background())

	viewed, err := identity.Normalize(cfg.Tipjar.Viewed)
	if err != nil {
		log.Panic().Err(err).Msg("viewed address")
		return
	}
	if !common.IsHexAddress(cfg.Tipjar.Contract) {
		log.Panic().Str("contract", cfg.Tipjar.Contract).Msg("invalid contract address")
		return
	}

	nodeSource, ok := cfg.DataSources[cfg.Tipjar.Node]
	if !ok {
		log.Panic().Str("name", cfg.Tipjar.Node).Msg("unknown node datasource")
		return
	}
	feedSource, ok := cfg.DataSources[cfg.Tipjar.Feed]
	if !ok {
		log.Panic().Str("name", cfg.Tipjar.Feed).Msg("unknown feed datasource")
		return
	}

	client, err := ledger.Dial(ctx, nodeSource, common.HexToAddress(cfg.Tipjar.Contract))
	if err != nil {
		log.Panic().Err(err).Msg("connecting to node")
		return
	}

	wallet, err := createWallet(cfg.Tipjar, client)
	if err != nil {
		log.Panic().Err(err).Msg("wallet session")
		return
	}

	session := controller.New(
		viewed,
		wallet,
		client,
		feed.NewClient(feedSource),
		controller.LogNotifier{},
		cfg.Tipjar.Controller,
	).WithResolver(createResolver(cfg.Tipjar))

	session.Start(ctx)
	session.Refresh(ctx)

	refreshInterval := time.Minute
	if cfg.Tipjar.RefreshInterval > 0 {
		refreshInterval = time.Second * time.Duration(cfg.Tipjar.RefreshInterval)
	}
	go refreshLoop(ctx, session, refreshInterval)
	go eventLoop(ctx, session)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	<-signals

	cancel()

	if err := session.Close(); err != nil {
		log.Panic().Err(err).Msg("closing session")
	}

	close(signals)
}

func createWallet(cfg Tipjar, client *ledger.Client) (ledger.Wallet, error) {
	if cfg.WalletKey == "" {
		log.Info().Msg("no wallet key configured, running without a session")
		return ledger.Disconnected{}, nil
	}
	return ledger.NewLocalWallet(cfg.WalletKey, client.Backend())
}

func createResolver(cfg Tipjar) identity.NameResolver {
	static := make(identity.StaticResolver)
	for address, name := range cfg.Names {
		if common.IsHexAddress(address) {
			static[common.HexToAddress(address)] = name
		}
	}

	nameTTL := time.Hour
	if cfg.NameTTL > 0 {
		nameTTL = time.Second * time.Duration(cfg.NameTTL)
	}
	return identity.NewCachedResolver(static, nameTTL)
}

func refreshLoop(ctx context.Context, session *controller.Controller, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			session.Refresh(ctx)
		}
	}
}

func eventLoop(ctx context.Context, session *controller.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-session.Events():
			if !ok {
				return
			}

			switch event.Kind {
			case controller.EventTipSent:
				// a sent tip eventually shows up in the feed
				session.Refresh(ctx)
			default:
				log.Debug().
					Str("kind", string(event.Kind)).
					Str("state", string(event.State)).
					Msg("session event")
			}
		}
	}
}
