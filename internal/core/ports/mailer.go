package ports

import "context"

// MailMessage is a single outbound email.
type MailMessage struct {
	ID      string   `json:"id"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	// Attempts counts failed deliveries so far.
	Attempts int `json:"attempts,omitempty"`
}

// Mailer delivers mail out-of-band. Implementations may deliver
// synchronously or hand the message to a queue.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
