package failure

type Severity int

// aggregator control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// ClassifiedError is implemented by every package-local error type.
// Only the aggregator reads Severity to decide whether a run continues.
type ClassifiedError interface {
	error
	Severity() Severity
}

// IsFatal reports whether err is a ClassifiedError of fatal severity.
// Unclassified errors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if ce, ok := err.(ClassifiedError); ok {
		return ce.Severity() == SeverityFatal
	}
	return true
}
