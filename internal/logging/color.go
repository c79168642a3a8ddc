package logging

import (
	"os"
	"strings"

	"github.com/backmassage/gifbatch/internal/config"
)

// useColor resolves mode against out: auto enables color only on a TTY,
// and NO_COLOR (https://no-color.org) or TERM=dumb turn it off.
func useColor(mode config.ColorMode, out *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return false
	}
	if out == nil {
		return false
	}
	fi, err := out.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
