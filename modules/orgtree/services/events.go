package services

import "time"

// NodeSelectedEvent is published on the event bus after a successful Select.
type NodeSelectedEvent struct {
	NodeID     string
	Name       string
	SelectedAt time.Time
}

// ExpansionToggledEvent is published after a successful Toggle.
type ExpansionToggledEvent struct {
	NodeID   string
	Expanded bool
}
