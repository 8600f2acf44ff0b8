package service

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// EmailService delivers codes through an email-to-SMS gateway: mail sent to <phone>@<domain>
// arrives on the handset as a text message.
type EmailService struct {
	dialer  *gomail.Dialer
	sender  string
	domain  string
	appName string
	ttl     time.Duration
}

func NewEmailService(host string, port int, user, pass, sender, domain, appName string, ttl time.Duration) *EmailService {
	dialer := gomail.NewDialer(host, port, user, pass)
	dialer.TLSConfig = &tls.Config{ServerName: host}

	return &EmailService{
		dialer:  dialer,
		sender:  sender,
		domain:  domain,
		appName: appName,
		ttl:     ttl,
	}
}

func (s *EmailService) SendOtp(ctx context.Context, phone, code string) error {
	if s.domain == "" {
		return errors.New("sms mail domain not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// gomail cannot be cancelled; stop waiting once ctx is done and let the send finish on its own
	done := make(chan error, 1)
	msg := s.buildMessage(phone, code)
	go func() {
		done <- s.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send otp mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("otp mail to %s abandoned: %w", s.Recipient(phone), ctx.Err())
	}
}

func (s *EmailService) buildMessage(phone, code string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.dialer.Username, s.sender))
	m.SetHeader("To", s.Recipient(phone))
	m.SetHeader("Subject", "Verification code")
	// gateways forward the plain-text part only
	m.SetBody("text/plain", OtpMessage(s.appName, code, s.ttl))
	return m
}

// Recipient maps a phone number onto the gateway address.
func (s *EmailService) Recipient(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	return fmt.Sprintf("%s@%s", string(digits), s.domain)
}
