package features

import (
	"context"
	"errors"
	"net"
	"time"

	whoisparser "github.com/likexian/whois-parser"
)

var (
	ErrNoHost            = errors.New("no host to look up")
	ErrNoRecords         = errors.New("no records")
	ErrNXDomain          = errors.New("domain does not exist")
	ErrNoCreationDate    = errors.New("no creation date")
	ErrNoExpirationDate  = errors.New("no expiration date")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrLookupDisabled    = errors.New("lookup disabled")
)

// Outcome tags how a single extractor finished.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTimeout
	OutcomeResolution
	OutcomeUnreachable
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeResolution:
		return "resolution"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeMalformed:
		return "malformed"
	}
	return "unknown"
}

// LookupResult is the outcome of one external call.
type LookupResult[T any] struct {
	Value T
	Err   error
}

func (r LookupResult[T]) OK() bool { return r.Err == nil }

// Classify maps a lookup error onto its failure tag. A nil error is
// OutcomeOK.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return OutcomeTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return OutcomeTimeout
		}
		return OutcomeResolution
	}

	switch {
	case errors.Is(err, ErrNXDomain),
		errors.Is(err, ErrNoRecords),
		errors.Is(err, whoisparser.ErrNotFoundDomain):
		return OutcomeResolution
	case errors.Is(err, ErrNoHost),
		errors.Is(err, ErrUnsupportedScheme),
		errors.Is(err, ErrMalformedResponse),
		errors.Is(err, ErrNoCreationDate),
		errors.Is(err, ErrNoExpirationDate):
		return OutcomeMalformed
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeTimeout
	}
	return OutcomeUnreachable
}

// Result is the extraction output for one URL, in vector order.
type Result struct {
	URL      string
	Values   [NumFeatures]float64
	Outcomes [NumFeatures]Outcome
	Elapsed  time.Duration
}

// Failed lists the features that fell back to their sentinel.
func (r Result) Failed() []Feature {
	var out []Feature
	for i, o := range r.Outcomes {
		if o != OutcomeOK {
			out = append(out, Feature(i))
		}
	}
	return out
}
