// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// AccountCreatedQueue is the durable queue carrying AccountCreatedEvent.
const AccountCreatedQueue = "account.created"

// AccountCreatedEvent is published after a user row is created, either by
// local registration or by a first Google sign-in.
type AccountCreatedEvent struct {
	UserID    uint64 `json:"user_id"`
	Email     string `json:"email"`
	Provider  string `json:"provider"` // "local" | "google"
	CreatedAt string `json:"created_at"`
}
