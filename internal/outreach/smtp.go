package outreach

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// OutboundEmail is one composed message ready for the transport.
type OutboundEmail struct {
	From           string
	FromName       string
	To             string
	Subject        string
	Body           string
	AttachmentPath string // optional PDF briefing
}

// Sender abstracts the mail transport so stage tests can capture sends.
type Sender interface {
	Send(ctx context.Context, msg OutboundEmail) error
}

// SMTPSender submits via STARTTLS with PLAIN auth, the standard posture for
// Gmail and most workspace providers (app password required).
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (s *SMTPSender) Send(ctx context.Context, msg OutboundEmail) error {
	if s.Host == "" || s.Username == "" || s.Password == "" {
		return fmt.Errorf("smtp transport is not configured (host/username/password)")
	}

	raw, err := buildMIME(msg)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	port := s.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", s.Host, port)

	// Providers reject plus-aliases at login but honor them in From.
	auth := sasl.NewPlainClient("", stripPlusAlias(s.Username), s.Password)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, msg.From, []string{msg.To}, bytes.NewReader(raw))
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", msg.To, err)
		}
	}
	return nil
}

func buildMIME(msg OutboundEmail) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Name: msg.FromName, Address: msg.From}})
	h.SetAddressList("To", []*mail.Address{{Address: msg.To}})
	h.SetSubject(msg.Subject)

	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}

	var th mail.InlineHeader
	th.Set("Content-Type", "text/plain; charset=utf-8")
	tw, err := mw.CreateSingleInline(th)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(tw, msg.Body); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}

	if msg.AttachmentPath != "" {
		f, err := os.Open(msg.AttachmentPath)
		if err != nil {
			// the message still goes out, just without the briefing
			log.Printf("[outreach] attachment %s unavailable: %v", msg.AttachmentPath, err)
		} else {
			var ah mail.AttachmentHeader
			ah.Set("Content-Type", "application/pdf")
			ah.SetFilename(filepath.Base(msg.AttachmentPath))
			aw, err := mw.CreateAttachment(ah)
			if err != nil {
				f.Close()
				return nil, err
			}
			if _, err := io.Copy(aw, f); err != nil {
				f.Close()
				return nil, err
			}
			f.Close()
			if err := aw.Close(); err != nil {
				return nil, err
			}
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stripPlusAlias turns user+tag@example.com into user@example.com.
func stripPlusAlias(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at < 0 {
		return addr
	}
	local, dom := addr[:at], addr[at+1:]
	if i := strings.IndexByte(local, '+'); i > 0 {
		local = local[:i]
	}
	return local + "@" + dom
}
