// Package messaging carries requests between the coordinator and the
// content handler of a NotebookLM tab.
//
// Messages and responses are plain data records with the same JSON shape
// the HTTP endpoint accepts. Automation results are always responses;
// an error from Send means the message could not be delivered.
package messaging

import (
	"github.com/shiromatz/yt-to-notebooklm/pkg/automator"
)

// Type names a message.
type Type string

const (
	// TypeAddSource adds one URL as a notebook source
	TypeAddSource Type = "ADD_SOURCE"
	// TypeProcessPlaylist adds every video of a listing page
	TypeProcessPlaylist Type = "PROCESS_PLAYLIST"
	// TypeCloseDialog dismisses any open dialog
	TypeCloseDialog Type = "CLOSE_DIALOG"
	// TypePing checks that a content handler is attached
	TypePing Type = "PING"
	// TypeCreateNotebook clicks the create-notebook button
	TypeCreateNotebook Type = "CREATE_NOTEBOOK"
	// TypeSendURL is the coordinator's single-URL entry point
	TypeSendURL Type = "SEND_URL"
)

// Mode values that only appear in responses, next to the automator modes.
const (
	ModePlaylistStarted = "playlist_started"
	ModeClipboard       = "clipboard"
	ModeBadURL          = "bad_url"
	ModeCreateFailed    = "create_failed"
	ModeNoResponse      = "no_response"
	ModeException       = "exception"
)

// Message is a request to a tab or to the coordinator.
type Message struct {
	Type     Type   `json:"type"`
	URL      string `json:"url,omitempty"`
	TargetID string `json:"targetId,omitempty"`
	SourceID string `json:"sourceId,omitempty"`
}

// Response answers a Message.
type Response struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Detail string `json:"detail,omitempty"`
	Step   string `json:"step,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// OK is the plain acknowledgement.
func OK() Response { return Response{OK: true} }

// FromOutcome converts an automation outcome.
func FromOutcome(o automator.Outcome) Response {
	return Response{OK: o.OK, Mode: string(o.Mode), Detail: o.Detail, Step: o.Step}
}

// Outcome converts the response back into an automation outcome.
func (r Response) Outcome() automator.Outcome {
	return automator.Outcome{OK: r.OK, Mode: automator.Mode(r.Mode), Detail: r.Detail, Step: r.Step}
}

// LimitReached reports whether the response stops a batch.
func (r Response) LimitReached() bool {
	return r.Mode == string(automator.ModeLimitReached)
}
