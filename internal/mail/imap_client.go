package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/jhillyerd/enmime"
	"github.com/sirupsen/logrus"

	"github.com/brandon/statement-sync/internal/config"
	"github.com/brandon/statement-sync/pkg/types"
)

// Client wraps an IMAP client connection to the statement mailbox
type Client struct {
	config    *config.MailboxConfig
	client    *client.Client
	logger    *logrus.Logger
	connected bool
}

// NewClient creates a new IMAP client (does not connect immediately)
func NewClient(cfg *config.MailboxConfig, logger *logrus.Logger) *Client {
	return &Client{
		config: cfg,
		logger: logger,
	}
}

// Connect establishes a connection to the IMAP server
func (c *Client) Connect() error {
	if c.connected && c.client != nil {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)

	cl, err := client.DialTLS(addr, &tls.Config{
		ServerName: c.config.Host,
		MinVersion: tls.VersionTLS12,
	})
	if err != nil {
		return &ConnectionError{Addr: addr, Err: err}
	}

	c.client = cl

	if err := c.client.Login(c.config.Username, c.config.Password); err != nil {
		c.logger.WithError(err).Error("Failed to login to IMAP server")
		c.client.Logout() //nolint:errcheck
		c.client = nil
		return &ConnectionError{Addr: addr, Err: err}
	}

	c.connected = true
	c.logger.WithField("host", c.config.Host).Info("Connected to IMAP server")
	return nil
}

// Close closes the IMAP connection
func (c *Client) Close() error {
	if c.client != nil {
		if err := c.client.Logout(); err != nil {
			return err
		}
		c.client = nil
		c.connected = false
	}
	return nil
}

// FetchSince returns the messages received at or after the cutoff, in
// mailbox delivery order. Messages that cannot be parsed are logged and
// skipped; they never abort the fetch.
func (c *Client) FetchSince(folder string, cutoff time.Time) ([]*types.Message, error) {
	if err := c.Connect(); err != nil {
		return nil, err
	}

	if _, err := c.client.Select(folder, true); err != nil {
		return nil, fmt.Errorf("failed to select folder %s: %w", folder, err)
	}

	// SINCE is date-granular on the server; the exact cutoff is enforced
	// against the internal date below.
	criteria := imap.NewSearchCriteria()
	criteria.Since = cutoff

	seqNums, err := c.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search folder %s: %w", folder, err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, imap.FetchRFC822}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)

	go func() {
		done <- c.client.Fetch(seqSet, items, messages)
	}()

	var result []*types.Message
	for msg := range messages {
		parsed, err := c.parseMessage(msg)
		if err != nil {
			c.logger.WithError(err).Warn("Skipping unreadable message")
			continue
		}
		if parsed.Received.Before(cutoff) {
			continue
		}
		result = append(result, parsed)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"folder": folder,
		"count":  len(result),
	}).Info("Retrieved messages")

	return result, nil
}

// parseMessage parses an IMAP message into our Message type, extracting
// attachments from the RFC822 content with enmime.
func (c *Client) parseMessage(msg *imap.Message) (*types.Message, error) {
	if msg.Envelope == nil {
		return nil, &MessageError{UID: msg.Uid, Err: fmt.Errorf("missing envelope")}
	}

	message := &types.Message{
		UID:       msg.Uid,
		MessageID: msg.Envelope.MessageId,
		Subject:   msg.Envelope.Subject,
		Received:  msg.InternalDate,
	}

	if len(msg.Envelope.From) > 0 {
		addr := msg.Envelope.From[0]
		message.SenderName = addr.PersonalName
		message.SenderEmail = addr.Address()
	}

	raw := c.readBody(msg)
	if len(raw) == 0 {
		return nil, &MessageError{UID: msg.Uid, Subject: message.Subject, Err: fmt.Errorf("empty message body")}
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, &MessageError{UID: msg.Uid, Subject: message.Subject, Err: err}
	}

	message.Attachments = ExtractAttachments(env)
	return message, nil
}

// readBody returns the raw RFC822 content of a fetched message, trying the
// available body sections the way different servers key them.
func (c *Client) readBody(msg *imap.Message) []byte {
	if msg.Body == nil {
		return nil
	}

	if literal, ok := msg.Body[nil]; ok {
		return readLiteral(literal)
	}

	emptySection := &imap.BodySectionName{}
	if literal, ok := msg.Body[emptySection]; ok {
		return readLiteral(literal)
	}

	for _, literal := range msg.Body {
		if raw := readLiteral(literal); len(raw) > 0 {
			return raw
		}
	}
	return nil
}

func readLiteral(literal imap.Literal) []byte {
	raw, err := io.ReadAll(literal)
	if err != nil {
		return nil
	}
	return raw
}

// ExtractAttachments collects the named file parts of a parsed envelope in
// delivery order: regular attachments first, then named inline parts, which
// some senders use for statement files.
func ExtractAttachments(env *enmime.Envelope) []types.Attachment {
	var attachments []types.Attachment
	for _, part := range env.Attachments {
		attachments = append(attachments, types.Attachment{
			FileName: part.FileName,
			Content:  part.Content,
		})
	}
	for _, part := range env.Inlines {
		if part.FileName == "" {
			continue
		}
		attachments = append(attachments, types.Attachment{
			FileName: part.FileName,
			Content:  part.Content,
		})
	}
	return attachments
}
