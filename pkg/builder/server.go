package builder

import "time"

const defaultRequestTimeout = 30 * time.Second

func (b *Builder) Port(port string) *Builder {
	b.cfg.Server.Port = port
	return b
}

func (b *Builder) AllowedOrigins(origins string) *Builder {
	b.cfg.Server.AllowedOrigins = origins
	return b
}

func (b *Builder) Environment(env string) *Builder {
	b.cfg.Server.Environment = env
	return b
}

func (b *Builder) LogLevel(level string) *Builder {
	b.cfg.Server.LogLevel = level
	return b
}

// RequestTimeout sets the default per-request deadline. Clients can still
// ask for a different one with X-Request-Timeout.
func (b *Builder) RequestTimeout(timeout time.Duration) *Builder {
	if timeout > 0 {
		b.cfg.Server.RequestTimeout = timeout
	}
	return b
}
