package grooming

import "errors"

var (
	// ErrMeetingNotFound indicates the referenced meeting does not exist.
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrRuleNotFound indicates the referenced qualification rule does not exist.
	ErrRuleNotFound = errors.New("qualification rule not found")

	// ErrJobNotFound indicates the referenced email job does not exist.
	ErrJobNotFound = errors.New("email job not found")

	// ErrNoCredential indicates the user has no outbound credential for the
	// requested integration. Terminal until the user reconnects.
	ErrNoCredential = errors.New("credential not found")

	// ErrMaxAttempts indicates the meeting already used its configured
	// reschedule attempts.
	ErrMaxAttempts = errors.New("maximum reschedule attempts reached")

	// ErrNotNoShow indicates a reschedule was requested for a meeting that is
	// not marked as a no-show.
	ErrNotNoShow = errors.New("meeting is not marked as a no-show")

	// ErrMeetingNotEnded indicates a no-show mark was requested before the
	// meeting's scheduled end time passed.
	ErrMeetingNotEnded = errors.New("meeting has not ended yet")
)
