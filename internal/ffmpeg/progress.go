package ffmpeg

import (
	"strconv"
	"strings"
	"time"
)

// ProgressBlock is one complete "-progress" report. ffmpeg writes a block of
// key=value lines terminated by "progress=continue" or "progress=end".
type ProgressBlock struct {
	Frame   int64
	OutTime time.Duration
	Done    bool // progress=end
	known   bool // out_time was parseable
}

// ProgressParser accumulates key=value lines into blocks.
type ProgressParser struct {
	cur ProgressBlock
}

// IsProgressLine reports whether line looks like a -progress key=value pair.
// Regular ffmpeg log lines contain spaces or colons before any '='.
func IsProgressLine(line string) bool {
	k, _, ok := strings.Cut(line, "=")
	if !ok || k == "" {
		return false
	}
	for _, r := range k {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// Feed consumes one line. It returns the finished block and true when the
// line closed a block.
func (p *ProgressParser) Feed(line string) (ProgressBlock, bool) {
	key, val, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return ProgressBlock{}, false
	}
	val = strings.TrimSpace(val)

	switch key {
	case "frame":
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			p.cur.Frame = n
		}
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds; out_time_ms is misnamed upstream.
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n >= 0 {
			p.cur.OutTime = time.Duration(n) * time.Microsecond
			p.cur.known = true
		}
	case "progress":
		b := p.cur
		b.Done = val == "end"
		p.cur = ProgressBlock{Frame: b.Frame, OutTime: b.OutTime, known: b.known}
		return b, true
	}
	return ProgressBlock{}, false
}

// Percent converts the block position into a percentage of total, clamped
// to [0, 100]. It returns nil when the position or the total is unknown.
// A finished block is always 100%.
func (b ProgressBlock) Percent(total time.Duration) *float64 {
	if b.Done {
		v := 100.0
		return &v
	}
	if !b.known || total <= 0 {
		return nil
	}
	v := float64(b.OutTime) / float64(total) * 100
	switch {
	case v < 0:
		v = 0
	case v > 100:
		v = 100
	}
	return &v
}
