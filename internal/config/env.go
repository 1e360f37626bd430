// Package config provides configuration helpers for go-camrig commands.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults used when the matching environment variable is unset.
const (
	DefaultAddr       = ":8080"
	DefaultTickHz     = 60
	DefaultLogLevel   = "info"
	DefaultKafkaTopic = "camrig.orientation"
)

// Env returns the value of key, or def if it is unset or empty.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Addr returns the control surface listen address from CAMRIG_ADDR.
func Addr() string {
	return Env("CAMRIG_ADDR", DefaultAddr)
}

// RigsFile returns the rig file path from CAMRIG_RIGS. Empty means none.
func RigsFile() string {
	return os.Getenv("CAMRIG_RIGS")
}

// LogLevel returns the level from CAMRIG_LOG_LEVEL.
func LogLevel() string {
	return Env("CAMRIG_LOG_LEVEL", DefaultLogLevel)
}

// TickRate returns the update period derived from CAMRIG_TICK_HZ.
// Invalid or non-positive values fall back to DefaultTickHz.
func TickRate() time.Duration {
	hz, err := strconv.Atoi(os.Getenv("CAMRIG_TICK_HZ"))
	if err != nil || hz <= 0 {
		hz = DefaultTickHz
	}
	return time.Second / time.Duration(hz)
}

// KafkaBrokers returns the comma-separated broker list from
// CAMRIG_KAFKA_BROKERS. Nil disables telemetry.
func KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(os.Getenv("CAMRIG_KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// KafkaTopic returns the telemetry topic from CAMRIG_KAFKA_TOPIC.
func KafkaTopic() string {
	return Env("CAMRIG_KAFKA_TOPIC", DefaultKafkaTopic)
}
