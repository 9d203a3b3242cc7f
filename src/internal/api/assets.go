package api

import (
	"mime"
	"net/http"
	"os"
	"path"

	"dtdash/src/internal/domain"
)

// Minimal container images often ship without /etc/mime.types, in which
// case browsers reject stylesheets served with a guessed Content-Type.
func init() {
	mime.AddExtensionType(".css", "text/css")
	mime.AddExtensionType(".js", "application/javascript")
	mime.AddExtensionType(".mjs", "application/javascript")
	mime.AddExtensionType(".html", "text/html")
	mime.AddExtensionType(".svg", "image/svg+xml")
	mime.AddExtensionType(".json", "application/json")
	mime.AddExtensionType(".wasm", "application/wasm")
}

// assetFS hides directories without an index.html so the file server never
// produces a listing.
type assetFS struct {
	fs http.FileSystem
}

func (a assetFS) Open(name string) (http.File, error) {
	f, err := a.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := a.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}

func (a *Api) registerAssets() error {
	dir := a.ctx.Config.AssetsDir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		a.ctx.Logger.Warn("Assets directory not found", "dir", dir)
	} else {
		a.ctx.Logger.Info("Serving assets", "dir", dir, "prefix", domain.AssetsPrefix)
	}

	fileServer := http.StripPrefix(domain.AssetsPrefix, http.FileServer(assetFS{fs: http.Dir(dir)}))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		fileServer.ServeHTTP(w, r)
	})

	return a.router.Mount(domain.AssetsPrefix, handler,
		http.MethodGet, http.MethodHead, http.MethodOptions)
}
