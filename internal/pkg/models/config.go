package models

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	Relay    RelayConfig
	Client   ClientConfig
	Services ServicesConfig
	NewRelic NewRelicConfig
	Logger   LoggerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// JWTConfig contains JWT authentication configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in minutes
	Issuer     string
}

// RelayConfig contains relay service specific configuration
type RelayConfig struct {
	// SendBufferSize is the per-subscriber outbound queue length.
	// Samples beyond this are dropped for that subscriber only.
	SendBufferSize int
	WriteTimeout   int // seconds, per outbound frame
}

// ClientConfig contains driver/viewer client behaviour configuration
type ClientConfig struct {
	ReconnectInterval  int     // seconds between subscriber reconnect attempts
	SampleInterval     int     // seconds between driver samples
	SampleDistanceM    float64 // meters of movement that forces a sample
	StalenessSweep     int     // seconds between viewer eviction sweeps
	StalenessThreshold int     // seconds after which a vehicle record is stale
}

// ServicesConfig contains URLs and credentials for sibling services
type ServicesConfig struct {
	TripsServiceURL string
	InternalAPIKey  string
}

// NewRelicConfig contains New Relic agent configuration
type NewRelicConfig struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}
