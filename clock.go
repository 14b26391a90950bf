package httpclient

import (
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// clockOrDefault returns c if non-nil, otherwise a real wall clock. A
// nil Clock field on ClientImpl behaves exactly like
// clockwork.NewRealClock(); tests may inject clockwork.NewFakeClock() to
// get deterministic timing in request-duration log lines.
func clockOrDefault(c clockwork.Clock) clockwork.Clock {
	if c != nil {
		return c
	}
	return clockwork.NewRealClock()
}

// IDGenerator mints a correlation id for one request/response exchange.
// The default generates a random UUIDv4; tests may substitute a
// deterministic generator.
type IDGenerator func() string

func defaultIDGenerator() string {
	return uuid.NewString()
}

func idGeneratorOrDefault(g IDGenerator) IDGenerator {
	if g != nil {
		return g
	}
	return defaultIDGenerator
}
