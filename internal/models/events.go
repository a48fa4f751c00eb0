// Package models defines inbound event and outbound message structures.
package models

// EventKind discriminates the inbound event variants. Exactly one of the
// optional payload groups on Event is meaningful for a given kind.
type EventKind string

const (
	// EventCommand is a slash command such as /start or /checkin.
	EventCommand EventKind = "command"
	// EventText is a free-text message.
	EventText EventKind = "text"
	// EventPhoto is a photo message with an optional caption.
	EventPhoto EventKind = "photo"
	// EventButton is an inline keyboard button press.
	EventButton EventKind = "button"
)

// Event represents a single inbound chat event from a user.
type Event struct {
	From     string    `json:"from"` // canonical chat identity of the sender
	Kind     EventKind `json:"kind"`
	Command  string    `json:"command,omitempty"`   // EventCommand: command name without slash
	Text     string    `json:"text,omitempty"`      // EventText: message body
	PhotoRef string    `json:"photo_ref,omitempty"` // EventPhoto: opaque media reference
	Caption  string    `json:"caption,omitempty"`   // EventPhoto: optional caption
	Button   string    `json:"button,omitempty"`    // EventButton: button tag
	Payload  string    `json:"payload,omitempty"`   // EventButton: optional button payload
	Time     int64     `json:"time"`
}

// Button represents a single inline keyboard button.
type Button struct {
	Label   string `json:"label"`
	Tag     string `json:"tag"`
	Payload string `json:"payload,omitempty"`
}
