package consts

// QueueBackend names the event queue implementation the CLI wires into the engine.
type QueueBackend string

const (
	QueueRing    QueueBackend = "ring"    // Single-goroutine ring over the slot's storage
	QueueChannel QueueBackend = "channel" // Buffered channel, safe for concurrent producers
)

// Engine defaults
const (
	DefaultPoolCapacity    = 4
	DefaultQueueSize       = 16
	DefaultMaxIndexEntries = 1024
	DefaultMaxSteps        = 1000
)

// Environment
const (
	EnvPrefix      = "TABULA_"
	DefaultEnvFile = ".env"
)

// Personal.AI order the ending
