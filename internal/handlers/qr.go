package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// HandleQR renders a PNG QR code that opens the join screen for a room
func (ctx *Context) HandleQR(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])
	if session, ok := ctx.Registry.Store().Get(code); !ok || session.Closed() {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(joinURL(ctx.baseURL(r), code), qrcode.Medium, qrSize)
	if err != nil {
		log.Printf("HandleQR: encode %s: %v", code, err)
		http.Error(w, "Could not render QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
