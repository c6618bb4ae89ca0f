package provider

import (
	"context"
	"time"

	"github.com/ricirt/healthcheck/internal/domain"
)

// TransitionPayload is the JSON body posted to the webhook.
type TransitionPayload struct {
	ID              string    `json:"id"`
	Healthy         bool      `json:"healthy"`
	PreviousHealthy bool      `json:"previous_healthy"`
	Message         string    `json:"message"`
	PreviousMessage string    `json:"previous_message"`
	At              time.Time `json:"at"`
}

func NewTransitionPayload(t domain.Transition) TransitionPayload {
	return TransitionPayload{
		ID:              t.ID,
		Healthy:         t.To.Healthy,
		PreviousHealthy: t.From.Healthy,
		Message:         t.To.Text,
		PreviousMessage: t.From.Text,
		At:              t.At,
	}
}

// Notifier abstracts delivery of a health transition to an external system.
// Mocking this interface in tests gives full control over delivery behaviour
// without making real HTTP calls.
type Notifier interface {
	Notify(ctx context.Context, t domain.Transition) error
}
