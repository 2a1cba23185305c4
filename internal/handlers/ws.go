package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
	"github.com/aaronzipp/officially-sus-arena/internal/ws"
)

// HandleWS upgrades to a WebSocket and serves client actions until the
// connection drops, then applies the disconnect rules.
func (ctx *Context) HandleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ctx.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("HandleWS: upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn)
	if debug {
		log.Printf("HandleWS: client %s connected from %s", client.ID(), r.RemoteAddr)
	}

	go client.WritePump()
	client.ReadPump(func(req models.Request) {
		resp := ctx.Registry.Dispatch(r.Context(), client, req)
		client.Send(models.Envelope{Type: ws.EventResponse, ID: req.ID, Data: resp})
	})

	ctx.Registry.Disconnect(context.Background(), client)
	if debug {
		log.Printf("HandleWS: client %s disconnected", client.ID())
	}
}

func (ctx *Context) checkOrigin(r *http.Request) bool {
	allowed := ""
	if ctx.Config != nil {
		allowed = ctx.Config.CORSOrigin
	}
	origin := r.Header.Get("Origin")
	if allowed == "" || allowed == "*" || origin == "" {
		return true
	}
	return origin == allowed || sameHost(origin, r.Host)
}
