package models

import "encoding/json"

// Envelope is a message sent to a client over its connection
type Envelope struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"` // request id for responses
	Data any    `json:"data,omitempty"`
}

// Request is an action sent by a client
type Request struct {
	ID      string          `json:"id"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response answers a single Request
type Response struct {
	Success     bool         `json:"success"`
	Error       string       `json:"error,omitempty"`
	Code        string       `json:"code,omitempty"`
	RoomCode    string       `json:"roomCode,omitempty"`
	PlayerID    string       `json:"playerId,omitempty"`
	SessionView *SessionView `json:"gameState,omitempty"`
	IsSpectator bool         `json:"isSpectator,omitempty"`
}

// CreateSessionPayload is the input of create-session
type CreateSessionPayload struct {
	EnableBots bool `json:"enableBots"`
}

// JoinPayload is the input of join
type JoinPayload struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
	PlayerID    string `json:"playerId,omitempty"`
}

// StartPayload is the input of start
type StartPayload struct {
	TotalRounds int `json:"totalRounds"`
}

// VotePayload is the input of vote
type VotePayload struct {
	TargetID string `json:"targetId"`
}

// HostLeftNotice is broadcast when the host disconnects
type HostLeftNotice struct {
	RoomCode string `json:"roomCode"`
	Message  string `json:"message"`
}
