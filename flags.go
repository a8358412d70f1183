package main

import "github.com/urfave/cli/v2"

var FlagLogLevel = &cli.StringFlag{
	Name:     "log-level",
	EnvVars:  []string{"LOG_LEVEL"},
	Value:    "info",
	Required: false,
}

var FlagLogWriter = &cli.StringFlag{
	Name:     "log-writer",
	EnvVars:  []string{"LOG_WRITER"},
	Value:    "console",
	Required: false,
}

var FlagConfigFile = &cli.StringFlag{
	Name:     "config",
	Usage:    "path to broker config file (json); flags override file values",
	EnvVars:  []string{"SPRINKLER_CONFIG"},
	Required: false,
}

var FlagMQTTServer = &cli.StringFlag{
	Name:     "mqtt-server",
	Usage:    "broker host or address",
	EnvVars:  []string{"MQTT_SERVER"},
	Required: false,
}

var FlagMQTTPort = &cli.IntFlag{
	Name:     "mqtt-port",
	EnvVars:  []string{"MQTT_PORT"},
	Value:    1883,
	Required: false,
}

var FlagMQTTClientID = &cli.StringFlag{
	Name:     "mqtt-client-id",
	EnvVars:  []string{"MQTT_CLIENT_ID"},
	Value:    "sprinkler_controller",
	Required: false,
}

var FlagMQTTUsername = &cli.StringFlag{
	Name:     "mqtt-username",
	EnvVars:  []string{"MQTT_USERNAME"},
	Required: false,
}

var FlagMQTTPassword = &cli.StringFlag{
	Name:     "mqtt-password",
	EnvVars:  []string{"MQTT_PASSWORD"},
	Required: false,
}

var FlagZoneNames = &cli.StringSliceFlag{
	Name:    "zone-names",
	Usage:   "display names for the zones, in order",
	EnvVars: []string{"ZONE_NAMES"},
	Value: cli.NewStringSlice(
		"Front Lawn",
		"Back Lawn",
		"Garden",
		"Side Yard",
		"Flower Bed",
		"Drip System",
		"Extra Zone",
	),
	Required: false,
}

var FlagZonePins = &cli.IntSliceFlag{
	Name:     "zone-pins",
	Usage:    "GPIO pins driving the zone relays, in order",
	EnvVars:  []string{"ZONE_PINS"},
	Value:    cli.NewIntSlice(5, 4, 14, 12, 13, 15, 16),
	Required: false,
}

var FlagMaxRuntime = &cli.DurationFlag{
	Name:     "max-runtime",
	Usage:    "safety ceiling for continuous zone ON time",
	EnvVars:  []string{"MAX_RUNTIME"},
	Value:    0,
	Required: false,
}

var FlagOTAAddr = &cli.StringFlag{
	Name:     "ota-addr",
	Usage:    "firmware upload listen address, empty to disable",
	EnvVars:  []string{"OTA_ADDR"},
	Value:    ":8266",
	Required: false,
}

var FlagOTAStagingDir = &cli.StringFlag{
	Name:     "ota-staging-dir",
	EnvVars:  []string{"OTA_STAGING_DIR"},
	Value:    "/var/lib/sprinkler/firmware",
	Required: false,
}
