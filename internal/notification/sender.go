package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"fleetlease/internal/config"
)

// Sender delivers one templated message to one recipient.
type Sender interface {
	Send(ctx context.Context, template Template, recipient string, fields map[string]string) error
}

// Template identifies a message body variant.
type Template string

const (
	TemplateInvitation       Template = "driver_invitation"
	TemplateProfileSubmitted Template = "driver_profile_submitted"
	TemplateDriverConfirmed  Template = "driver_confirmed"
	TemplateDriverRejected   Template = "driver_rejected"
	TemplateSignatureNeeded  Template = "lease_signature_needed"
	TemplateFullySigned      Template = "lease_fully_signed"
	TemplateFeePaid          Template = "lease_fee_paid"
	TemplateTripStarted      Template = "lease_trip_started"
	TemplateTripCompleted    Template = "lease_trip_completed"
	TemplateVoided           Template = "lease_voided"
)

var subjects = map[Template]string{
	TemplateInvitation:       "You have been invited to join a fleet",
	TemplateProfileSubmitted: "A driver submitted their profile for review",
	TemplateDriverConfirmed:  "Your driver profile has been confirmed",
	TemplateDriverRejected:   "Your driver profile was not approved",
	TemplateSignatureNeeded:  "A lease agreement is awaiting your signature",
	TemplateFullySigned:      "Your lease agreement is fully signed",
	TemplateFeePaid:          "Match fee received - trip can start",
	TemplateTripStarted:      "Trip started",
	TemplateTripCompleted:    "Trip completed",
	TemplateVoided:           "Lease agreement voided",
}

// SMTPSender sends plain-text mail through the configured relay.
type SMTPSender struct {
	cfg *config.SMTPConfig
}

func NewSMTPSender(cfg *config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(_ context.Context, template Template, recipient string, fields map[string]string) error {
	subject, ok := subjects[template]
	if !ok {
		subject = string(template)
	}

	var body strings.Builder
	for k, v := range fields {
		fmt.Fprintf(&body, "%s: %s\r\n", k, v)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.From, recipient, subject, body.String())

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send %s mail: %w", template, err)
	}
	return nil
}
