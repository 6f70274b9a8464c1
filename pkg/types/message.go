package types

import "time"

// Message represents one inbound email message for a single run
type Message struct {
	UID         uint32       `json:"uid"`
	MessageID   string       `json:"message_id"`
	Subject     string       `json:"subject"`
	SenderName  string       `json:"sender_name"`
	SenderEmail string       `json:"sender_email"`
	Received    time.Time    `json:"received"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is one file carried by a message, in delivery order
type Attachment struct {
	FileName string `json:"file_name"`
	Content  []byte `json:"-"`
}
