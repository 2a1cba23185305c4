package ws

import (
	"log"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

// Broadcast sends the same message to every recipient
func Broadcast(recipients []models.Recipient, event string, data any) {
	msg := models.Envelope{Type: event, Data: data}
	successCount := 0
	for _, r := range recipients {
		if r.Conn.Send(msg) {
			successCount++
		}
	}
	if debug {
		log.Printf("broadcast: event=%s sent to %d/%d clients", event, successCount, len(recipients))
	}
}

// BroadcastPersonalized sends each recipient its own rendering
func BroadcastPersonalized(recipients []models.Recipient, event string, render func(models.Recipient) any) {
	for _, r := range recipients {
		r.Conn.Send(models.Envelope{Type: event, Data: render(r)})
	}
}
