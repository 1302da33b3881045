// Package totp implements the second authentication factor: time-based
// one-time codes with a 30s step and ±1 step of clock-skew tolerance.
// Accepted codes are single-use within their validity window, enforced by a
// replay guard keyed on (user, code).
package totp

import (
	"context"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	period = 30
	skew   = 1
	digits = otp.DigitsSix
)

// replayTTL covers every time step in which a code is still accepted.
const replayTTL = time.Duration(period*(2*skew+1)) * time.Second

// Manager generates 2FA secrets and verifies presented codes.
type Manager struct {
	issuer string
	replay ReplayGuard
	now    func() time.Time
}

// NewManager builds a Manager. The clock defaults to time.Now and is only
// overridden in tests.
func NewManager(issuer string, replay ReplayGuard) *Manager {
	return &Manager{issuer: issuer, replay: replay, now: time.Now}
}

// WithClock returns a copy of the manager using the given clock.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	clone := *m
	clone.now = now
	return &clone
}

// GenerateSecret mints a fresh 160-bit base32 secret for the account and the
// otpauth:// URI an authenticator app can enroll from.
func (m *Manager) GenerateSecret(account string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer,
		AccountName: account,
		SecretSize:  20,
		Period:      period,
		Digits:      digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate totp secret: %w", err)
	}
	return key.Secret(), key.URL(), nil
}

// Verify checks the code against the secret at the current time, then marks
// it used. A code that already passed once within its window verifies false,
// and so does a code whose replay marking fails: skipping the guard would
// turn an infrastructure outage into a 2FA replay window.
func (m *Manager) Verify(ctx context.Context, userID int64, secret, code string) (bool, error) {
	valid, err := totp.ValidateCustom(code, secret, m.now().UTC(), totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !valid {
		return false, nil
	}

	firstUse, err := m.replay.MarkUsed(ctx, userID, code, replayTTL)
	if err != nil {
		return false, fmt.Errorf("mark totp code used: %w", err)
	}
	return firstUse, nil
}
