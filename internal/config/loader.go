package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/Tabula/pkg/consts"
	ferrors "github.com/turtacn/Tabula/pkg/errors"
	"github.com/turtacn/Tabula/pkg/protocol"
)

// Load reads the yaml file at path, applies defaults, loads the given dotenv
// files, overlays TABULA_* environment variables, and validates the result.
// Missing dotenv files are an error; pass none to skip that step.
func Load(path string, envFiles ...string) (*protocol.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalid("read config", err)
	}
	return Parse(data, envFiles...)
}

// Parse is Load without the file read.
func Parse(data []byte, envFiles ...string) (*protocol.Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, invalid("parse yaml", err)
	}

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, invalid("load env files", err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: consts.EnvPrefix}); err != nil {
		return nil, invalid("apply environment", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, invalid("validate", err)
	}
	if err := checkReferences(&cfg.Machine); err != nil {
		return nil, invalid("validate machine", err)
	}
	return cfg, nil
}

// Defaults returns a config with every engine and simulation default filled in.
func Defaults() *protocol.Config {
	return &protocol.Config{
		Engine: protocol.EngineConfig{
			PoolCapacity:    consts.DefaultPoolCapacity,
			QueueSize:       consts.DefaultQueueSize,
			QueueBackend:    string(consts.QueueRing),
			MaxIndexEntries: consts.DefaultMaxIndexEntries,
		},
		Simulation: protocol.SimulationConfig{
			Instances: 1,
			MaxSteps:  consts.DefaultMaxSteps,
		},
		Observability: protocol.ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// checkReferences makes sure every name used by transitions, the initial
// state and the script was declared.
func checkReferences(m *protocol.MachineConfig) error {
	states := toSet(m.States)
	events := toSet(m.Events)
	for i, t := range m.Transitions {
		if !states[t.From] {
			return fmt.Errorf("transition %d: unknown from state %q", i, t.From)
		}
		if !states[t.To] {
			return fmt.Errorf("transition %d: unknown to state %q", i, t.To)
		}
		if !events[t.Event] {
			return fmt.Errorf("transition %d: unknown event %q", i, t.Event)
		}
	}
	if !states[m.Initial] {
		return fmt.Errorf("unknown initial state %q", m.Initial)
	}
	for i, ev := range m.Script {
		if !events[ev] {
			return fmt.Errorf("script step %d: unknown event %q", i, ev)
		}
	}
	return nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func invalid(msg string, err error) error {
	return ferrors.New(ferrors.ErrCodeConfigInvalid, "LoadConfig", msg, err)
}

// Personal.AI order the ending
