package auth

import "github.com/rs/zerolog"

type Option func(s *Session)

// WithLogger with logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithInvalidateListener registers the session end listener
func WithInvalidateListener(listener func()) Option {
	return func(s *Session) {
		s.listener = listener
	}
}
