package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type SmsService struct {
	gatewayURL string
	apiKey     string
	from       string
	appName    string
	ttl        time.Duration
	timeout    time.Duration
}

func NewSmsService(gatewayURL, apiKey, from, appName string, ttl time.Duration) *SmsService {
	return &SmsService{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		from:       from,
		appName:    appName,
		ttl:        ttl,
		timeout:    10 * time.Second,
	}
}

// SendOtp posts a form-encoded message to the gateway (seven.io style: to, text, from + X-Api-Key).
func (s *SmsService) SendOtp(ctx context.Context, phone, code string) error {
	if s.apiKey == "" {
		return errors.New("sms api key missing")
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("to", phone)
	args.Set("text", OtpMessage(s.appName, code, s.ttl))
	if s.from != "" {
		args.Set("from", s.from)
	}

	agent := fiber.Post(s.gatewayURL)
	agent.Set("X-Api-Key", s.apiKey)
	agent.Timeout(timeout)
	agent.Form(args)

	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("sms request failed: %w", errors.Join(errs...))
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("sms send failed with status %d", status)
	}
	return nil
}

// OtpMessage renders the text delivered to the user.
func OtpMessage(appName, code string, ttl time.Duration) string {
	brand := cases.Title(language.English).String(appName)
	minutes := int(ttl.Minutes())
	if minutes <= 1 {
		return fmt.Sprintf("%s: your verification code is %s. It expires in 1 minute.", brand, code)
	}
	return fmt.Sprintf("%s: your verification code is %s. It expires in %d minutes.", brand, code, minutes)
}
