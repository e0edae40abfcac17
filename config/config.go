package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Slots holds the local wall-clock times of the three daily due slots.
// Overdue math is derived from these at generation time, so they are
// documented, stable configuration: changing them later never rewrites
// the instants of already-generated instances.
type Slots struct {
	Morning   string `yaml:"morning"`
	Afternoon string `yaml:"afternoon"`
	Evening   string `yaml:"evening"`
}

type Config struct {
	DatabasePath    string
	Timezone        *time.Location
	AdvanceInterval time.Duration
	Slots           Slots
}

var slotTimeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

func Load() (*Config, error) {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/houseduty.db"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "America/New_York"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	interval := 60
	if v := os.Getenv("ADVANCE_INTERVAL_MINUTES"); v != "" {
		interval, err = strconv.Atoi(v)
		if err != nil || interval < 1 {
			return nil, fmt.Errorf("ADVANCE_INTERVAL_MINUTES must be a positive number")
		}
	}

	slots := DefaultSlots()
	if path := os.Getenv("SLOTS_FILE"); path != "" {
		slots, err = LoadSlots(path)
		if err != nil {
			return nil, fmt.Errorf("load slots file: %w", err)
		}
	}

	return &Config{
		DatabasePath:    dbPath,
		Timezone:        tz,
		AdvanceInterval: time.Duration(interval) * time.Minute,
		Slots:           slots,
	}, nil
}

func DefaultSlots() Slots {
	return Slots{
		Morning:   "09:00",
		Afternoon: "13:00",
		Evening:   "19:00",
	}
}

// LoadSlots reads a YAML slots file; missing keys keep their defaults.
func LoadSlots(path string) (Slots, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Slots{}, err
	}

	slots := DefaultSlots()
	if err := yaml.Unmarshal(data, &slots); err != nil {
		return Slots{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := slots.Validate(); err != nil {
		return Slots{}, err
	}
	return slots, nil
}

func (s Slots) Validate() error {
	for name, v := range map[string]string{
		"morning":   s.Morning,
		"afternoon": s.Afternoon,
		"evening":   s.Evening,
	} {
		if !slotTimeRe.MatchString(v) {
			return fmt.Errorf("invalid %s slot time %q, expected HH:MM", name, v)
		}
	}
	return nil
}
