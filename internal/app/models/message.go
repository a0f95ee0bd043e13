package models

import "time"

// Message is an announcement targeted at students
type Message struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	Targeting
}
