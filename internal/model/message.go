// Package model defines the core data structures for the ghwazi application.
package model

import "time"

// RawMessage is a bank notification email as delivered by an external
// mail fetcher. The body may be quoted-printable encoded HTML.
type RawMessage struct {
	Date    time.Time
	ID      string
	Subject string
	Sender  string
	Body    string
}
