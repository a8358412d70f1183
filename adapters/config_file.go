package adapters

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"sprinkler-controller/application"
)

// brokerConfigFile mirrors the on-device config.json layout. The port is a
// string there, historical accident kept for compatibility with existing
// config files.
type brokerConfigFile struct {
	Server   string `json:"mqtt_server"`
	Port     string `json:"mqtt_port"`
	User     string `json:"mqtt_user"`
	Password string `json:"mqtt_password"`
}

// LoadBrokerConfig reads a broker config file. An unparseable or out-of-range
// port falls back to the default rather than failing the boot.
func LoadBrokerConfig(path string) (application.BrokerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return application.BrokerConfig{}, fmt.Errorf("read config: %w", err)
	}

	var file brokerConfigFile
	if err := json.Unmarshal(data, &file); err != nil {
		return application.BrokerConfig{}, fmt.Errorf("parse config: %w", err)
	}

	port, err := strconv.Atoi(file.Port)
	if err != nil {
		port = application.DefaultBrokerPort
	}

	return application.BrokerConfig{
		Server:   file.Server,
		Port:     port,
		Username: file.User,
		Password: file.Password,
	}, nil
}
