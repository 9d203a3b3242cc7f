package domain

import "time"

// Constants
const (
	DefaultHostname  = "localhost"
	DefaultPort      = "8000"
	DefaultAssetsDir = "assets"
	WildcardHost     = "0.0.0.0"

	// AnonymousName is rendered when no name segment was captured.
	AnonymousName = "INCOGNITO"

	AssetsPrefix   = "/assets"
	LiveReloadPath = "/livereload"
)

// Environment variables read at startup
const (
	EnvHostname    = "SERVER_HOSTNAME"
	EnvPort        = "SERVER_PORT"
	EnvAssetsDir   = "SERVER_ASSETS_DIR"
	EnvBasePath    = "SERVER_BASE_PATH"
	EnvWatchAssets = "SERVER_WATCH_ASSETS"
	EnvCompress    = "SERVER_COMPRESS"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
)

type AssetOp string

const (
	AssetCreated  AssetOp = "create"
	AssetModified AssetOp = "modify"
	AssetRemoved  AssetOp = "remove"
	AssetRenamed  AssetOp = "rename"
)

// AssetEvent is pushed to live-reload clients when a file under the assets
// directory changes. Path is relative to the assets directory.
type AssetEvent struct {
	Path string    `json:"path"`
	Op   AssetOp   `json:"op"`
	Time time.Time `json:"time"`
}
