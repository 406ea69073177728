package internal

import "time"

type Config struct {
	Host                 string        `env:"HOST,default="`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	CommandBufferSize    int           `env:"COMMAND_BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
}
