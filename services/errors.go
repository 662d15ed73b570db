package services

import "errors"

// Not-found failures: the caller decides between a 404 and a redirect.
var (
	ErrTrackNotFound   = errors.New("certification track not found")
	ErrModuleNotFound  = errors.New("course module not found")
	ErrTestNotFound    = errors.New("mock test not found")
	ErrAttemptNotFound = errors.New("test attempt not found")
	ErrNotEnrolled     = errors.New("you are not enrolled in this track")
)

// Precondition violations: the transition is refused before any state is
// touched. The messages are user-facing and actionable.
var (
	ErrAttemptFinalized     = errors.New("this attempt has already been submitted")
	ErrAlreadyCertified     = errors.New("you have already passed the exam for this track")
	ErrAttemptsExhausted    = errors.New("you have 0 attempts remaining, purchase more to continue")
	ErrProgressTooLow       = errors.New("complete the required course modules before attempting the final exam")
	ErrEnrollmentInactive   = errors.New("your enrollment is not active")
	ErrCertificateNotLapsed = errors.New("your certificate has not expired yet, reissue is not needed")
	ErrNoCertificate        = errors.New("no certificate has been issued for this track")
	ErrDuplicatePayment     = errors.New("this payment reference has already been used")
)

// IsPrecondition reports whether err is one of the refuse-cleanly precondition
// violations, as opposed to a not-found or an infrastructure failure.
func IsPrecondition(err error) bool {
	for _, e := range []error{
		ErrAttemptFinalized,
		ErrAlreadyCertified,
		ErrAttemptsExhausted,
		ErrProgressTooLow,
		ErrEnrollmentInactive,
		ErrCertificateNotLapsed,
		ErrNoCertificate,
		ErrDuplicatePayment,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is one of the typed not-found failures.
func IsNotFound(err error) bool {
	for _, e := range []error{
		ErrTrackNotFound,
		ErrModuleNotFound,
		ErrTestNotFound,
		ErrAttemptNotFound,
		ErrNotEnrolled,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
