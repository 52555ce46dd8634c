package model

import "time"

type NotificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Options is the resolved input handed to the native notification facility.
type Options struct {
	AppName    string
	Title      string
	Message    string
	Sound      bool
	Wait       bool
	Reply      bool
	CloseLabel string
	Timeout    time.Duration
}

type Reply struct {
	ID      string        `json:"id"`
	Value   string        `json:"reply"`
	Outcome string        `json:"outcome"`
	Elapsed time.Duration `json:"-"`
}

type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Reply      string    `json:"reply"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
