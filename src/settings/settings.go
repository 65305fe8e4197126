package settings

import "sync"

type Arguments struct {
	// MongoURI is the connection string for the backing store.
	MongoURI string

	// DatabaseName is the mongo database holding the CMDB collections.
	DatabaseName string

	// Directory to store log files
	LogDir string

	ConfigFile string

	// the host name or IP address to listen on
	Host string

	// the port number to listen on
	Port int

	// DefaultPageSize is the page size used when a list view does not supply one.
	DefaultPageSize int

	// Strongly verbose logging
	Verbose bool

	Debug bool

	AuthEnabled bool // Enable authentication

	PrintToScreen bool

	Version string
}

var (
	instance *Arguments
	once     sync.Once
)

// GetSettings returns the global settings instance.
func GetSettings() *Arguments {
	once.Do(func() {
		instance = &Arguments{
			DefaultPageSize: 25,
		}
	})
	return instance
}
