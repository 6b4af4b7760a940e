package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wonfolio/auth/internal/auth/session"
	"github.com/wonfolio/auth/pkg/jwtx"
	"github.com/wonfolio/auth/pkg/slogx"
)

var (
	ErrEmailCooldown   = errors.New("email_cooldown")
	ErrEmailDailyLimit = errors.New("email_daily_limit")
	ErrInvalidPurpose  = errors.New("invalid_verification_purpose")
)

// Verification token purposes. A token minted for one flow cannot be redeemed
// in another.
const (
	PurposeSignup        = "email-verification:signup"
	PurposePasswordReset = "email-verification:reset"
)

const (
	// verifiedFlagTTL is how long a confirmed email stays usable for sign-up.
	verifiedFlagTTL = 30 * time.Minute

	// sendCooldown throttles back-to-back sends to one address.
	sendCooldown = 60 * time.Second

	// maxDailySends caps verification mails per address per day.
	maxDailySends = 5
)

// Mailer delivers a rendered message. The production transport lives outside
// this repo; DevMailer below logs instead of sending.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailService mints verification links, throttles how often they can be
// requested and redeems them into the verified flag that gates sign-up.
type EmailService struct {
	Codec   *jwtx.Codec
	Session session.Store
	Mailer  Mailer

	// BaseURL prefixes the verification link handed to the mail template,
	// e.g. "https://account.example.com".
	BaseURL string

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *EmailService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SendVerificationLink mails a signup verification link to email, subject to
// the cooldown and the daily cap.
func (s *EmailService) SendVerificationLink(ctx context.Context, email string) error {
	return s.send(ctx, email, PurposeSignup, "Verify your email",
		"Follow this link to verify your email address: ", "/api/email/verify")
}

// SendPasswordResetLink mails a password reset link. Same throttles as the
// signup flow; the token purpose differs so the two cannot be crossed. The
// link lands on the reset form, which posts the token back together with the
// new password.
func (s *EmailService) SendPasswordResetLink(ctx context.Context, email string) error {
	return s.send(ctx, email, PurposePasswordReset, "Reset your password",
		"Follow this link to reset your password: ", "/reset-password")
}

func (s *EmailService) send(ctx context.Context, email, purpose, subject, intro, linkPath string) error {
	inCooldown, err := s.Session.InCooldown(ctx, email)
	if err != nil {
		return err
	}
	if inCooldown {
		return ErrEmailCooldown
	}

	day := s.now().Format("2006-01-02")
	count, err := s.Session.IncrementAttempts(ctx, email, day, untilMidnight(s.now()))
	if err != nil {
		return err
	}
	if count > maxDailySends {
		return ErrEmailDailyLimit
	}

	token, err := s.Codec.IssueVerification(email, purpose)
	if err != nil {
		return err
	}

	body := intro + s.BaseURL + linkPath + "?token=" + token
	if err := s.Mailer.Send(ctx, email, subject, body); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}

	if err := s.Session.SetCooldown(ctx, email, sendCooldown); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("verification mail sent",
		slog.String("email", email),
		slog.String("purpose", purpose))
	return nil
}

// VerifyEmail redeems a signup verification token and marks the address
// verified for sign-up.
func (s *EmailService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.Codec.ParseType(token, jwtx.TokenTypeVerification)
	if err != nil {
		return mapCodecError(err)
	}
	if claims.Purpose != PurposeSignup {
		return ErrInvalidPurpose
	}

	return s.Session.MarkEmailVerified(ctx, claims.Subject, verifiedFlagTTL)
}

// untilMidnight returns the duration to the next local midnight, used as the
// expiry of the per-day send counter.
func untilMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}

// DevMailer logs the message instead of delivering it. Useful in development
// and as the default when no transport is configured.
type DevMailer struct{}

func (DevMailer) Send(ctx context.Context, to, subject, body string) error {
	slogx.FromContext(ctx).Info("dev mailer delivery",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body))
	return nil
}
