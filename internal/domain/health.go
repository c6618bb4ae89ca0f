package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultHealthyText   = "Healthy"
	DefaultUnhealthyText = "Unhealthy"

	// MaxMessageLength caps the health text accepted from a PUT.
	MaxMessageLength = 4096
)

// Status is the (text, healthy) pair reported by the health endpoint.
// Values are immutable once published; updates replace the whole pair.
type Status struct {
	Text    string `json:"message"`
	Healthy bool   `json:"healthy"`
}

// DefaultStatus is the state every process starts in.
func DefaultStatus() Status {
	return Status{Text: DefaultHealthyText, Healthy: true}
}

// HealthFlag is the wire form of Status.Healthy in update payloads.
type HealthFlag string

const (
	FlagHealthy   HealthFlag = "healthy"
	FlagUnhealthy HealthFlag = "unhealthy"
)

func (f HealthFlag) IsValid() bool {
	switch f {
	case FlagHealthy, FlagUnhealthy:
		return true
	}
	return false
}

// UpdateRequest is the inbound PUT payload.
//
//	{"status": "unhealthy", "message": "db down"}
type UpdateRequest struct {
	Status  HealthFlag `json:"status"`
	Message string     `json:"message"`
}

// Validate checks the request and returns the status it describes.
// An omitted message falls back to the default text for the flag.
func (r *UpdateRequest) Validate() (Status, error) {
	flag := HealthFlag(strings.ToLower(strings.TrimSpace(string(r.Status))))
	if !flag.IsValid() {
		return Status{}, fmt.Errorf("%w: status must be healthy or unhealthy", ErrInvalidPayload)
	}

	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = DefaultHealthyText
		if flag == FlagUnhealthy {
			msg = DefaultUnhealthyText
		}
	}
	if len(msg) > MaxMessageLength {
		return Status{}, fmt.Errorf("%w: message exceeds %d bytes", ErrInvalidPayload, MaxMessageLength)
	}

	return Status{Text: msg, Healthy: flag == FlagHealthy}, nil
}

// Transition records a flip of the healthy flag.
type Transition struct {
	ID   string    `json:"id"`
	From Status    `json:"from"`
	To   Status    `json:"to"`
	At   time.Time `json:"at"`
}
