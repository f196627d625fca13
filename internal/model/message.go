package model

import "time"

// Message is a contact-form submission addressed to the administrators.
type Message struct {
	ID          int64     // message.message_id
	INumber     int64     // message.i_number
	ReturnEmail string    // message.return_email
	Title       string    // message.message_title
	Body        string    // message.message
	CreatedAt   time.Time // message.created_at
}
