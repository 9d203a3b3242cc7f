package domain

import (
	"fmt"
	"log/slog"
	"net"
)

type Config struct {
	Version     string
	Hostname    string
	Port        string
	AssetsDir   string
	BasePath    string
	LogLevel    string
	LogFormat   string
	WatchAssets bool
	Compress    bool
}

// URL is the scheme-relative base address handed to the dashboard template.
func (c Config) URL() string {
	return fmt.Sprintf("//%s:%s", c.Hostname, c.Port)
}

// BindHost returns the address the listener binds to. The default hostname
// binds every interface so the server is reachable from outside a container.
func (c Config) BindHost() string {
	if c.Hostname == DefaultHostname {
		return WildcardHost
	}
	return c.Hostname
}

func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.BindHost(), c.Port)
}

// Context is created once at startup and shared read-only by every handler.
type Context struct {
	Config Config
	Logger *slog.Logger
}
