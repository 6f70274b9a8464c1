package mail

import "fmt"

// ConnectionError reports that the IMAP server could not be reached or the
// login was rejected. It is fatal: the run aborts during setup.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to IMAP server %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// MessageError reports a failure while processing a single message. It is
// recovered per item: the message is logged and skipped, the run continues.
type MessageError struct {
	UID     uint32
	Subject string
	Err     error
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("failed to process message %d (%q): %v", e.UID, e.Subject, e.Err)
}

func (e *MessageError) Unwrap() error {
	return e.Err
}
