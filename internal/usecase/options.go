package usecase

import "time"

// Option -.
type Option func(*Signaling)

// OfferTimeout bounds how long a call may stay unanswered before both
// parties are told it ended. Zero disables the timeout.
func OfferTimeout(timeout time.Duration) Option {
	return func(s *Signaling) {
		s.offerTimeout = timeout
	}
}

// Events attaches the call lifecycle event feed.
func Events(publisher EventPublisher) Option {
	return func(s *Signaling) {
		s.events = publisher
	}
}

// Clock overrides the timestamp source. Tests use it to pin chat timestamps.
func Clock(now func() time.Time) Option {
	return func(s *Signaling) {
		s.now = now
	}
}
