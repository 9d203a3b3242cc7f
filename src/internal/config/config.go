// Package config assembles the immutable server configuration from flags,
// environment variables and .env files.
package config

import (
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"dtdash/src/internal/domain"
)

// Flag names shared by the CLI and Load.
const (
	FlagHost      = "host"
	FlagPort      = "port"
	FlagAssets    = "assets"
	FlagBasePath  = "base-path"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagWatch     = "watch"
	FlagCompress  = "compress"
)

type binding struct {
	key  string
	env  string
	flag string
	def  interface{}
}

var bindings = []binding{
	{"hostname", domain.EnvHostname, FlagHost, domain.DefaultHostname},
	{"port", domain.EnvPort, FlagPort, domain.DefaultPort},
	{"assetsDir", domain.EnvAssetsDir, FlagAssets, domain.DefaultAssetsDir},
	{"basePath", domain.EnvBasePath, FlagBasePath, ""},
	{"logLevel", domain.EnvLogLevel, FlagLogLevel, "info"},
	{"logFormat", domain.EnvLogFormat, FlagLogFormat, "text"},
	{"watchAssets", domain.EnvWatchAssets, FlagWatch, false},
	{"compress", domain.EnvCompress, FlagCompress, true},
}

// RegisterFlags defines the server flags on fs. Flag defaults mirror the
// environment defaults so an unchanged flag never masks an env var.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagHost, domain.DefaultHostname, "Hostname advertised to clients (env "+domain.EnvHostname+")")
	fs.String(FlagPort, domain.DefaultPort, "Port to listen on (env "+domain.EnvPort+")")
	fs.String(FlagAssets, domain.DefaultAssetsDir, "Directory served under /assets (env "+domain.EnvAssetsDir+")")
	fs.String(FlagBasePath, "", "Path prefix stripped from incoming requests (env "+domain.EnvBasePath+")")
	fs.String(FlagLogLevel, "info", "Log level: debug, info, warn, error (env "+domain.EnvLogLevel+")")
	fs.String(FlagLogFormat, "text", "Log format: text or json (env "+domain.EnvLogFormat+")")
	fs.Bool(FlagWatch, false, "Watch the assets directory and push changes over /livereload (env "+domain.EnvWatchAssets+")")
	fs.Bool(FlagCompress, true, "Gzip responses for clients that accept it (env "+domain.EnvCompress+")")
}

// Load builds the configuration. Precedence is changed flag, then
// environment (including .env files), then the built-in default. Missing or
// empty values are not errors, so Load never fails.
func Load(flags *pflag.FlagSet, envFiles ...string) domain.Config {
	for _, f := range envFiles {
		// A missing .env file is the normal case outside development.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		_ = v.BindEnv(b.key, b.env)
		if flags != nil {
			if f := flags.Lookup(b.flag); f != nil {
				_ = v.BindPFlag(b.key, f)
			}
		}
	}

	return domain.Config{
		Hostname:    v.GetString("hostname"),
		Port:        v.GetString("port"),
		AssetsDir:   v.GetString("assetsDir"),
		BasePath:    normalizeBasePath(v.GetString("basePath")),
		LogLevel:    v.GetString("logLevel"),
		LogFormat:   v.GetString("logFormat"),
		WatchAssets: getBool(v, "watchAssets", false),
		Compress:    getBool(v, "compress", true),
	}
}

// getBool falls back to def when the value is not a recognisable boolean,
// where viper's GetBool would silently yield false.
func getBool(v *viper.Viper, key string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
