package server

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/territory/model"
)

const (
	GridCols = 20
	GridRows = 15

	SeatsPerRoom  = 4
	MaxNameLength = 15

	MatchSeconds      = 300
	StartingResources = 100

	InitialResourceCount = 12
	ResourceValue        = 50
	MaxResources         = 15
	ResourceSpawnChance  = 0.1
	PlacementAttempts    = 50

	AIMoveChance = 0.7
)

var PlayerColors = [SeatsPerRoom]string{"#e74c3c", "#3498db", "#2ecc71", "#f1c40f"}

var StartPositions = [SeatsPerRoom]model.Point{
	{X: 2, Y: 2},
	{X: GridCols - 3, Y: 2},
	{X: 2, Y: GridRows - 3},
	{X: GridCols - 3, Y: GridRows - 3},
}

type Config struct {
	Port     string
	LogLevel log.Level

	TickInterval    time.Duration
	SweepInterval   time.Duration
	BackfillWait    time.Duration
	DisconnectGrace time.Duration
	DisposalDelay   time.Duration

	// inbound messages per second and burst, per connection
	MessageRate  float64
	MessageBurst int
}

func DefaultConfig() Config {
	return Config{
		Port:            "8080",
		LogLevel:        log.InfoLevel,
		TickInterval:    time.Second,
		SweepInterval:   time.Second,
		BackfillWait:    30 * time.Second,
		DisconnectGrace: 30 * time.Second,
		DisposalDelay:   60 * time.Second,
		MessageRate:     20,
		MessageBurst:    40,
	}
}

// ConfigFromEnv reads PORT and LOG_LEVEL over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	} else {
		log.Printf("Defaulting to port %s", cfg.Port)
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := log.ParseLevel(lvl)
		if err != nil {
			log.Warnf("ignoring LOG_LEVEL %q: %v", lvl, err)
		} else {
			cfg.LogLevel = parsed
		}
	}
	return cfg
}
