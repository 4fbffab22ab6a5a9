// Package static embeds the dashboard's browser assets.
package static

import (
	"embed"
	"net/http"
)

//go:embed charts.js dashboard.css
var files embed.FS

// Handler serves the embedded assets. Mount it with http.StripPrefix.
func Handler() http.Handler {
	return http.FileServerFS(files)
}
