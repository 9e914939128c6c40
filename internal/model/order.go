package model

import "time"

// Order tracks an inbound order whose documents still need filing. QueueCount
// counts sweep attempts; once it reaches the configured cap the order is left
// unhandled and never retried automatically.
type Order struct {
	ID             string    `json:"id"`
	No             string    `json:"no"`
	CustomerNo     string    `json:"customer_no"`
	Type           string    `json:"type"`
	QueueCount     int       `json:"queue_count"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
	Seller         string    `json:"seller,omitempty"`
	ProjectManager string    `json:"project_manager,omitempty"`
	Title          string    `json:"title,omitempty"`
	Filename       string    `json:"filename,omitempty"`
	Sender         string    `json:"sender,omitempty"`
	Handled        bool      `json:"handled"`
	CreatedAt      time.Time `json:"created_at"`
}
