// internal/models/customer.go
package models

// Customer is one entry of the customer list read at startup.
type Customer struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	TopicQuery string `json:"topic_query" validate:"required"`
	Interests  string `json:"interests" validate:"required"`
}
