package service

import "errors"

// Rejection taxonomy for auth operations. All of these are expected,
// user-facing outcomes; anything else coming out of the service is an
// infrastructure failure and must not reach callers verbatim.
//
// ErrInvalidCredentials deliberately covers unknown email, wrong password,
// and storage says-no alike, so responses never reveal whether an account
// exists.
var (
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrDuplicateUsername      = errors.New("username already taken")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountDisabled        = errors.New("account is disabled or banned")
	ErrTwoFactorRequired      = errors.New("two-factor code required")
	ErrTwoFactorInvalid       = errors.New("two-factor code invalid")
	ErrFaceVerificationFailed = errors.New("face recognition failed")
	ErrFaceQualityRejected    = errors.New("face quality check failed, please try again with better lighting")
	ErrNotFound               = errors.New("user not found")
)
