// Package console serves the embedded analytics dashboard.
package console

import (
	_ "embed"
	"net/http"
)

// The dashboard is an operator tool and must stay out of search indexes.
const (
	RobotsTagHeader = "X-Robots-Tag"
	RobotsTagValue  = "noindex, nofollow"
)

//go:embed console.html
var consoleHTML []byte

// Handler serves the dashboard page for every path it is mounted on. The
// page reads /analytics and /model-status from the same origin.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(RobotsTagHeader, RobotsTagValue)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(consoleHTML)
	})
}
