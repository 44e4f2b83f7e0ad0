// internal/models/notification.go
package models

import "time"

// EmailMessage is built once per customer and handed straight to the notifier.
type EmailMessage struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"` // plain text
	Created time.Time `json:"createdAt"`
}
