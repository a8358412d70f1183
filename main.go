package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sprinkler-controller/adapters"
	"sprinkler-controller/application"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const version = "v1.1.0"

var Flags = []cli.Flag{
	FlagLogLevel,
	FlagLogWriter,
	FlagConfigFile,
	FlagMQTTServer,
	FlagMQTTPort,
	FlagMQTTClientID,
	FlagMQTTUsername,
	FlagMQTTPassword,
	FlagZoneNames,
	FlagZonePins,
	FlagMaxRuntime,
	FlagOTAAddr,
	FlagOTAStagingDir,
}

func main() {
	var logger zerolog.Logger

	app := cli.App{
		Name:    "sprinkler-controller",
		Version: version,
		Flags:   Flags,
		Before: func(ctx *cli.Context) error {
			var logWriter io.Writer
			if ctx.String(FlagLogWriter.Name) == "console" {
				logWriter = zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: time.RFC3339Nano,
				}
			} else if ctx.String(FlagLogWriter.Name) == "json" {
				logWriter = os.Stderr
			}

			logger = zerolog.New(logWriter).With().Timestamp().
				Str("service", "sprinkler-controller").
				Str("module", "main").
				Logger()

			level, err := zerolog.ParseLevel(ctx.String(FlagLogLevel.Name))
			if err != nil {
				return err
			}

			zerolog.SetGlobalLevel(level)

			return nil
		},
		Action: func(ctx *cli.Context) error {
			logger.Info().Msg("service starting...")

			appCtx, cancel := context.WithCancel(logger.WithContext(context.Background()))
			go func() {
				c := make(chan os.Signal, 1)
				signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

				<-c

				logger.Warn().Msg("interrupt signal received")
				cancel()
			}()

			brokerCfg, err := brokerConfig(ctx, logger)
			if err != nil {
				return err
			}
			logger.Info().Str("broker", brokerCfg.URL()).Msg("broker configured")

			mqttClient := adapters.NewMQTTClient(adapters.MQTTClientParams{
				ClientID:    ctx.String(FlagMQTTClientID.Name),
				Broker:      brokerCfg,
				WillTopic:   application.TopicStatus,
				WillPayload: application.PayloadOffline,
				Log:         logger.With().Str("module", "mqtt-client").Logger(),
			})

			relays := adapters.NewRelayBank(adapters.RelayBankParams{
				Pins: zonePins(ctx),
				Log:  logger.With().Str("module", "relays").Logger(),
			})
			defer relays.Close()

			bank := application.NewZoneBank(zoneNames(ctx), relays)

			sysInfo := adapters.NewSysInfo()

			var updater application.UpdateHandler = application.NoopUpdater{}
			if addr := ctx.String(FlagOTAAddr.Name); addr != "" {
				if err := os.MkdirAll(ctx.String(FlagOTAStagingDir.Name), 0o755); err != nil {
					return err
				}
				otaListener, err := adapters.NewUpdateListener(adapters.UpdateListenerParams{
					Addr:       addr,
					StagingDir: ctx.String(FlagOTAStagingDir.Name),
					Log:        logger.With().Str("module", "ota").Logger(),
				})
				if err != nil {
					return err
				}
				defer otaListener.Close()
				updater = otaListener
			}

			connManager, err := application.NewConnectionManager(application.ConnectionManagerParams{
				Client: mqttClient,
				Bank:   bank,
				Device: application.DeviceInfo{
					Identifier:   sysInfo.ChipID(),
					Name:         "Sprinkler Controller",
					Model:        "sprinkler-controller",
					Manufacturer: "sprinkler-controller",
					SWVersion:    version,
				},
				Log: logger.With().Str("module", "connection").Logger(),
			})
			if err != nil {
				return err
			}

			statusPublisher, err := application.NewStatusPublisher(application.StatusPublisherParams{
				Client:    mqttClient,
				Bank:      bank,
				Telemetry: sysInfo,
				Log:       logger.With().Str("module", "status").Logger(),
			})
			if err != nil {
				return err
			}

			controlLoop, err := application.NewControlLoop(application.ControlLoopParams{
				OTA:        updater,
				Connection: connManager,
				Safety:     application.NewSafetyMonitor(ctx.Duration(FlagMaxRuntime.Name)),
				Status:     statusPublisher,
				Bank:       bank,
				Log:        logger.With().Str("module", "control-loop").Logger(),
			})
			if err != nil {
				return err
			}

			service, err := application.NewSprinklerService(application.SprinklerServiceParams{
				ControlLoop: controlLoop,
				MQTTClient:  mqttClient,
				Log:         logger.With().Str("module", "service").Logger(),
			})
			if err != nil {
				return err
			}

			logger.Info().Msg("service started")
			err = service.Run(appCtx)
			if err != nil {
				return err
			}

			logger.Info().Msg("service terminating...")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Err(err).Msg("service terminated")
	}
}

// brokerConfig assembles the broker config from the optional config file and
// the flags, flags winning. The result is normalized before use.
func brokerConfig(ctx *cli.Context, logger zerolog.Logger) (application.BrokerConfig, error) {
	var cfg application.BrokerConfig

	if path := ctx.String(FlagConfigFile.Name); path != "" {
		loaded, err := adapters.LoadBrokerConfig(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("config file ignored")
		} else {
			cfg = loaded
		}
	}

	if s := ctx.String(FlagMQTTServer.Name); s != "" {
		cfg.Server = s
	}
	if ctx.IsSet(FlagMQTTPort.Name) || cfg.Port == 0 {
		cfg.Port = ctx.Int(FlagMQTTPort.Name)
	}
	if u := ctx.String(FlagMQTTUsername.Name); u != "" {
		cfg.Username = u
	}
	if p := ctx.String(FlagMQTTPassword.Name); p != "" {
		cfg.Password = p
	}

	return cfg.Normalize()
}

func zoneNames(ctx *cli.Context) [application.NumZones]string {
	var names [application.NumZones]string
	for i, name := range ctx.StringSlice(FlagZoneNames.Name) {
		if i >= application.NumZones {
			break
		}
		names[i] = name
	}
	return names
}

func zonePins(ctx *cli.Context) [application.NumZones]int {
	pins := adapters.DefaultZonePins
	for i, pin := range ctx.IntSlice(FlagZonePins.Name) {
		if i >= application.NumZones {
			break
		}
		pins[i] = pin
	}
	return pins
}
