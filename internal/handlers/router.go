package handlers

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
)

//go:embed static
var staticFiles embed.FS

// NewRouter wires every HTTP route
func NewRouter(ctx *Context) *mux.Router {
	r := mux.NewRouter()
	r.Use(ctx.cors)

	r.HandleFunc("/ws", ctx.HandleWS)
	r.HandleFunc("/healthz", ctx.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{code}/qr", ctx.HandleQR).Methods(http.MethodGet, http.MethodOptions)

	static, _ := fs.Sub(staticFiles, "static")
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	return r
}
