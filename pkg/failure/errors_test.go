package failure_test

import (
	"errors"
	"testing"

	"github.com/rohmanhakim/store-insights/pkg/failure"
	"github.com/stretchr/testify/assert"
)

type classified struct {
	severity failure.Severity
}

func (c *classified) Error() string { return "classified" }
func (c *classified) Severity() failure.Severity { return c.severity }

func TestIsFatal(t *testing.T) {
	assert.False(t, failure.IsFatal(nil))
	assert.True(t, failure.IsFatal(errors.New("plain")))
	assert.True(t, failure.IsFatal(&classified{severity: failure.SeverityFatal}))
	assert.False(t, failure.IsFatal(&classified{severity: failure.SeverityRecoverable}))
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "fatal", failure.SeverityFatal.String())
	assert.Equal(t, "recoverable", failure.SeverityRecoverable.String())
	assert.Equal(t, "unknown", failure.Severity(42).String())
}
