package domain

import "time"

// PasscodeCategory distinguishes end-user codes from operator codes.
type PasscodeCategory string

const (
	PasscodeCategoryUser  PasscodeCategory = "user"
	PasscodeCategoryAdmin PasscodeCategory = "admin"
)

// AdminEmailSentinel is the email recorded for admin-category passcodes,
// which are not tied to a real account.
const AdminEmailSentinel = "admin"

// Passcode mirrors a one-time passcode issued by the OTP provider.
//
// Verified and Consumed are tracked independently: the user guard checks
// Verified and never writes, while the admin guard flips Consumed exactly
// once per record. Records are retained after expiry for audit.
type Passcode struct {
	ID        int64
	Email     string
	Code      string
	Category  PasscodeCategory
	CreatedAt time.Time
	ExpiresAt time.Time
	Verified  bool
	Consumed  bool
}

// Usable reports whether the passcode is still within its validity window.
func (p Passcode) Usable(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}
