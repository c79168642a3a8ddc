package display

import (
	"fmt"
	"io"
)

const (
	magenta = "\033[1;95m"
	reset   = "\033[0m"
)

// PrintBanner writes the ASCII art banner to w, in magenta when color is set.
func PrintBanner(w io.Writer, color bool) {
	if color {
		fmt.Fprint(w, magenta)
	}
	fmt.Fprint(w, `      _  __ _           _       _
 __ _(_)/ _| |__   __ _| |_ ___| |__
/ _`+"`"+` | | |_| '_ \ / _`+"`"+` | __/ __| '_ \
| (_| | |  _| |_) | (_| | || (__| | | |
\__, |_|_| |_.__/ \__,_|\__\___|_| |_|
|___/
`)
	if color {
		fmt.Fprint(w, reset)
	}
}
