package services

import (
	"context"
	"log"
	"strings"
)

// Mailer delivers sign-in codes.
type Mailer interface {
	SendCode(ctx context.Context, email, code string) error
}

// LogMailer records that a code was issued without delivering it. It stands
// in for a real mail provider in development.
type LogMailer struct{}

func (LogMailer) SendCode(ctx context.Context, email, code string) error {
	log.Printf("Sign-in code issued for %s (delivery not configured)", maskEmail(email))
	return nil
}

// maskEmail hides most of the local part of an address for logging.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return email
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}
