package sklogimpl

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Log(_ int, severity Severity, format string, args ...interface{}) {
	msg := fmt.Sprint(args...)
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	r.lines = append(r.lines, severity.String()+" "+msg)
}

func (r *recordingLogger) Flush() {}

func TestLog_UsesCurrentLogger(t *testing.T) {
	r := &recordingLogger{}
	SetLogger(r)
	defer SuppressLogs()

	Log(0, Info, "%d pairs", 12)
	Log(0, Warning, "", "no ", "format")
	assert.Equal(t, []string{"INFO 12 pairs", "WARNING no format"}, r.lines)
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "DEBUG", Debug.String())
	assert.Equal(t, "FATAL", Fatal.String())
	assert.Equal(t, "Severity(42)", Severity(42).String())
}
