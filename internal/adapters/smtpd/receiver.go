package smtpd

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// Receiver is an SMTP ingestion front end. Emails delivered to it are
// canonicalized and appended to the inbox exactly like webhook events;
// fields the wire format cannot provide (upstream id, conversation) stay
// null, as the canonical shape allows.
type Receiver struct {
	service    *core.TriageService
	logger     *zap.Logger
	listenAddr string
	domain     string
	server     *smtp.Server
}

// NewReceiver creates a new SMTP ingestion receiver
func NewReceiver(service *core.TriageService, logger *zap.Logger, listenAddr, domain string) *Receiver {
	return &Receiver{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
		domain:     domain,
	}
}

// Start starts the SMTP listener in the background
func (r *Receiver) Start() error {
	r.server = smtp.NewServer(&backend{receiver: r})
	r.server.Addr = r.listenAddr
	r.server.Domain = r.domain
	r.server.ReadTimeout = 30 * time.Second
	r.server.WriteTimeout = 30 * time.Second
	r.server.MaxMessageBytes = 10 * 1024 * 1024 // 10MB
	r.server.MaxRecipients = 10
	r.server.AllowInsecureAuth = true

	r.logger.Info("SMTP receiver starting", zap.String("address", r.listenAddr))

	go func() {
		if err := r.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				r.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()
	return nil
}

// Stop stops the SMTP listener
func (r *Receiver) Stop() error {
	if r.server != nil {
		return r.server.Close()
	}
	return nil
}

type backend struct {
	receiver *Receiver
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{receiver: b.receiver}, nil
}

type session struct {
	receiver *Receiver
	from     string
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *session) Rcpt(_ string, _ *smtp.RcptOptions) error {
	return nil
}

// Data parses the delivered message and appends its canonical record.
// A store failure is reported back as a temporary SMTP error so the
// sending MTA retries later.
func (s *session) Data(r io.Reader) error {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	record := s.receiver.canonicalize(msg, s.from)
	key, err := s.receiver.service.IngestMessage(context.Background(), record)
	if err != nil {
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "inbox temporarily unavailable",
		}
	}

	s.receiver.logger.Info("Ingested SMTP message",
		zap.String("storage_key", key),
		zap.String("from", s.from))
	return nil
}

func (s *session) Reset() {
	s.from = ""
}

func (s *session) Logout() error {
	return nil
}

// canonicalize maps an RFC 5322 message onto the canonical inbound shape.
func (r *Receiver) canonicalize(msg *mail.Message, envelopeFrom string) *core.InboundMessage {
	record := &core.InboundMessage{}

	if subject := decodeHeader(msg.Header.Get("Subject")); subject != "" {
		record.Email.Subject = &subject
	}
	if text := extractText(msg, r.logger); text != "" {
		record.Email.Text = &text
	}

	if envelopeFrom != "" {
		from := envelopeFrom
		record.User.Email = &from
	}
	if addr, err := mail.ParseAddress(msg.Header.Get("From")); err == nil {
		if addr.Name != "" {
			name := addr.Name
			record.User.Name = &name
		}
		if record.User.Email == nil && addr.Address != "" {
			email := addr.Address
			record.User.Email = &email
		}
	}

	source := "smtp"
	record.Source.Name = &source
	return record
}
