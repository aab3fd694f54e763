package protocol

// Config is the root document read by the tabula CLI.
type Config struct {
	Version       string              `yaml:"version"`
	Engine        EngineConfig        `yaml:"engine" envPrefix:"ENGINE_"`
	Machine       MachineConfig       `yaml:"machine" validate:"required"`
	Simulation    SimulationConfig    `yaml:"simulation" envPrefix:"SIM_"`
	Observability ObservabilityConfig `yaml:"observability" envPrefix:"OBS_"`
}

// EngineConfig sizes the instance pool and picks the queue backend.
type EngineConfig struct {
	PoolCapacity    int    `yaml:"pool_capacity" env:"POOL_CAPACITY" validate:"gte=0"`
	QueueSize       int    `yaml:"queue_size" env:"QUEUE_SIZE" validate:"gte=1"`
	QueueBackend    string `yaml:"queue_backend" env:"QUEUE_BACKEND" validate:"omitempty,oneof=ring channel"`
	IndexedLookup   bool   `yaml:"indexed_lookup" env:"INDEXED_LOOKUP"`
	MaxIndexEntries int    `yaml:"max_index_entries" env:"MAX_INDEX_ENTRIES" validate:"gte=0"`
}

// MachineConfig describes one transition table by name. Names are turned
// into numeric ids in declaration order, starting at zero.
type MachineConfig struct {
	Name        string             `yaml:"name" validate:"required"`
	States      []string           `yaml:"states" validate:"required,min=1,unique,dive,required"`
	Events      []string           `yaml:"events" validate:"required,min=1,unique,dive,required"`
	Transitions []TransitionConfig `yaml:"transitions" validate:"required,min=1,dive"`
	Initial     string             `yaml:"initial" validate:"required"`
	Script      []string           `yaml:"script"`
}

// TransitionConfig is one table row.
type TransitionConfig struct {
	From  string       `yaml:"from" validate:"required"`
	Event string       `yaml:"event" validate:"required"`
	To    string       `yaml:"to" validate:"required"`
	Guard *GuardConfig `yaml:"guard,omitempty"`
}

// GuardConfig is the declarative guard the simulator understands.
type GuardConfig struct {
	// MaxFires lets the row fire at most this many times per instance.
	MaxFires int `yaml:"max_fires" validate:"gte=0"`
}

type SimulationConfig struct {
	Instances int `yaml:"instances" env:"INSTANCES" validate:"gte=1"`
	MaxSteps  int `yaml:"max_steps" env:"MAX_STEPS" validate:"gte=1"`
}

type ObservabilityConfig struct {
	MetricsPort string `yaml:"metrics_port" env:"METRICS_PORT"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	LogFormat   string `yaml:"log_format" env:"LOG_FORMAT" validate:"omitempty,oneof=json text"`
}

// Personal.AI order the ending
