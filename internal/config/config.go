package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/team-builder/internal/engine"
)

// Config holds the server settings.
type Config struct {
	Addr        string
	LogLevel    string
	LogDev      bool
	DatabaseURL string // empty keeps the journal in memory
	NATSURL     string // empty disables publishing
	NATSSubject string
	PresetPath  string
	Roster      Roster
}

// Roster is the lane layout and operator cycle new rooms start with.
type Roster struct {
	Positions []string `yaml:"positions"`
	Operators []string `yaml:"operators"`
}

func DefaultRoster() Roster {
	r := Roster{Positions: append([]string(nil), engine.DefaultPositions...)}
	for _, op := range engine.DefaultOperators {
		r.Operators = append(r.Operators, string(op))
	}
	return r
}

// Load reads envFile (if it exists) into the environment, then builds the
// config from the environment. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		Addr:        getenv("ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		NATSURL:     os.Getenv("NATS_URL"),
		NATSSubject: getenv("NATS_SUBJECT", "teambuilder.rooms"),
		PresetPath:  os.Getenv("ROSTER_PRESET"),
		Roster:      DefaultRoster(),
	}

	if v := os.Getenv("LOG_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_DEV value: %v", err)
		}
		cfg.LogDev = dev
	}

	if cfg.PresetPath != "" {
		r, err := LoadRoster(cfg.PresetPath)
		if err != nil {
			return nil, err
		}
		cfg.Roster = r
	}
	return cfg, nil
}

// LoadRoster reads and validates a YAML roster preset.
func LoadRoster(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to read roster preset: %w", err)
	}
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("failed to unmarshal roster preset: %w", err)
	}
	if len(r.Operators) == 0 {
		r.Operators = DefaultRoster().Operators
	}
	if err := r.Validate(); err != nil {
		return Roster{}, fmt.Errorf("roster preset %s: %w", path, err)
	}
	return r, nil
}

func (r Roster) Validate() error {
	if len(r.Positions) == 0 {
		return errors.New("at least one position is required")
	}
	seen := map[string]bool{}
	for _, p := range r.Positions {
		if p == "" {
			return errors.New("empty position name")
		}
		if seen[p] {
			return fmt.Errorf("duplicate position %q", p)
		}
		seen[p] = true
	}

	hasDefault := false
	ops := map[string]bool{}
	for _, op := range r.Operators {
		if !engine.KnownOperator(engine.Operator(op)) {
			return fmt.Errorf("unknown operator %q", op)
		}
		if ops[op] {
			return fmt.Errorf("duplicate operator %q", op)
		}
		ops[op] = true
		hasDefault = hasDefault || engine.Operator(op) == engine.DefaultOperator
	}
	if !hasDefault {
		return fmt.Errorf("operators must include %q", engine.DefaultOperator)
	}
	return nil
}

// NewState returns an empty roster laid out by r.
func (r Roster) NewState() engine.State {
	ops := make([]engine.Operator, 0, len(r.Operators))
	for _, op := range r.Operators {
		ops = append(ops, engine.Operator(op))
	}
	return engine.NewState(r.Positions, ops)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
