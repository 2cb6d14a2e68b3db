package models

import "time"

// Notification belongs to the signed-in user.
type Notification struct {
	ID        string    `json:"_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is an internal message received by the signed-in user.
type Message struct {
	ID        string    `json:"_id"`
	Sender    Ref       `json:"sender"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Progress is one lesson or test result of a parent's child.
type Progress struct {
	ID          string     `json:"_id"`
	Eleve       Ref        `json:"eleve"`
	Lesson      Ref        `json:"lesson"`
	Test        Ref        `json:"test"`
	Score       *float64   `json:"score,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
