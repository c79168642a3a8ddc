package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"typical gif 3.2 MiB", 3355443, "3.2 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "250ms", FormatElapsed(250*time.Millisecond+400*time.Microsecond))
	assert.Equal(t, "12s", FormatElapsed(12400*time.Millisecond))
	assert.Equal(t, "2m5s", FormatElapsed(125*time.Second))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, false)
	assert.NotContains(t, buf.String(), "\033[")
	assert.Contains(t, buf.String(), "|___/")

	buf.Reset()
	PrintBanner(&buf, true)
	assert.Contains(t, buf.String(), "\033[1;95m")
	assert.Contains(t, buf.String(), "\033[0m")
}
