package closer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Mailbox answers whether a contact ever wrote back. The concrete
// implementation talks IMAP; tests supply a canned one.
type Mailbox interface {
	HasReplyFrom(ctx context.Context, addr string, since time.Time) (bool, error)
	Close()
}

// IMAPMailbox wraps a logged-in, selected IMAP session.
type IMAPMailbox struct {
	c *imapclient.Client
}

// DialMailbox connects over TLS, logs in, and selects the configured folder.
func DialMailbox(ctx context.Context, host string, port int, username, password, mailbox string) (*IMAPMailbox, error) {
	if host == "" {
		return nil, errors.New("imap host is required")
	}
	if username == "" || password == "" {
		return nil, errors.New("imap username/password is required")
	}
	if port == 0 {
		port = 993
	}
	if mailbox == "" {
		mailbox = "INBOX"
	}

	c, err := imapclient.DialTLS(fmt.Sprintf("%s:%d", host, port), &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(username, password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}

	// Read-only is enough, reply detection never flags messages.
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	return &IMAPMailbox{c: c}, nil
}

// HasReplyFrom searches the selected folder for any message from addr newer
// than since.
func (m *IMAPMailbox) HasReplyFrom(ctx context.Context, addr string, since time.Time) (bool, error) {
	if m.c == nil {
		return false, errors.New("imap client is nil")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	criteria := &imap.SearchCriteria{
		Header: []imap.SearchCriteriaHeaderField{
			{Key: "From", Value: addr},
		},
	}
	if !since.IsZero() {
		criteria.Since = since
	}

	data, err := m.c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return false, fmt.Errorf("imap uid search from %s: %w", addr, err)
	}
	return len(data.AllUIDs()) > 0, nil
}

// Close logs out then drops the connection.
func (m *IMAPMailbox) Close() {
	if m.c == nil {
		return
	}
	if err := m.c.Logout().Wait(); err != nil {
		log.Printf("[closer] imap logout: %v", err)
	}
	_ = m.c.Close()
}
