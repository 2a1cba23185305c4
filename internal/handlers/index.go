package handlers

import (
	"net/http"
	"os"

	"github.com/aaronzipp/officially-sus-arena/internal/config"
	"github.com/aaronzipp/officially-sus-arena/internal/registry"
)

var debug bool

func init() {
	debug = os.Getenv("DEBUG") != ""
}

// Context holds shared application dependencies
type Context struct {
	Registry *registry.Registry
	Config   *config.Config
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Bound    int    `json:"connections"`
}

// HandleHealth reports liveness and a few gauges
func (ctx *Context) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Sessions: ctx.Registry.Store().Len(),
		Bound:    ctx.Registry.Bound(),
	})
}
