package sahara

import (
	"time"

	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/protocol"
)

// Config holds the client configuration.
type Config struct {
	// ProgressCallback is called between exchanges (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Timeout bounds every receive after the device's Hello
	Timeout time.Duration

	// HelloTimeout bounds the wait for the device's Hello
	HelloTimeout time.Duration

	// MaxTransferSize is the receive buffer size and the largest
	// attribute payload accepted
	MaxTransferSize int

	// Version is the protocol version sent in the Hello response
	Version uint32

	// MinVersion is the oldest device protocol version accepted
	MinVersion uint32

	// Table maps attribute kinds to client commands
	Table *attributes.Table

	// ResetOnComplete sends Reset after the last query of RunSession
	ResetOnComplete bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout:         5 * time.Second,
		HelloTimeout:    5 * time.Second,
		MaxTransferSize: protocol.DefaultMaxTransferSize,
		Version:         protocol.ProtocolVersion,
		MinVersion:      protocol.ProtocolMinVersion,
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithProgressCallback sets a callback function to track session progress.
//
// Example:
//
//	client := sahara.New(t,
//	    sahara.WithProgressCallback(func(p sahara.Progress) {
//	        fmt.Printf("%.0f%% %s\n", p.Percentage, p.Phase)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the client operations.
//
// Example:
//
//	client := sahara.New(t, sahara.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTimeout sets the receive timeout used after the Hello.
//
// Example:
//
//	client := sahara.New(t, sahara.WithTimeout(2*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithHelloTimeout sets how long to wait for the device's Hello.
// Devices that were just plugged in may need several seconds.
func WithHelloTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.HelloTimeout = timeout
		}
	}
}

// WithMaxTransferSize sets the receive buffer size. Values below one
// Hello packet are ignored.
func WithMaxTransferSize(size int) Option {
	return func(c *Config) {
		if size >= protocol.HelloLength {
			c.MaxTransferSize = size
		}
	}
}

// WithProtocolVersion sets the version advertised in the Hello response
// and the oldest device version accepted.
//
// Example:
//
//	client := sahara.New(t, sahara.WithProtocolVersion(3, 2))
func WithProtocolVersion(version, minVersion uint32) Option {
	return func(c *Config) {
		if minVersion <= version {
			c.Version = version
			c.MinVersion = minVersion
		}
	}
}

// WithAttributeTable replaces the embedded attribute table.
//
// Example:
//
//	table, err := attributes.Parse("codes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := sahara.New(t, sahara.WithAttributeTable(table))
func WithAttributeTable(table *attributes.Table) Option {
	return func(c *Config) {
		c.Table = table
	}
}

// WithResetOnComplete makes RunSession send Reset once all attributes
// have been queried. The device then leaves EDL and restarts.
func WithResetOnComplete(reset bool) Option {
	return func(c *Config) {
		c.ResetOnComplete = reset
	}
}
