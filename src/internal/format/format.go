// FILE: relog/src/internal/format/format.go
package format

import (
	"time"

	"relog/src/internal/core"

	"github.com/valyala/bytebufferpool"
)

// ANSI escape pieces used when colorizing.
const (
	escPrefix = "\x1b["
	escSuffix = "m"
	escReset  = "\x1b[0m"
)

// Stripe colors for the request id column. Alternating by the parity of
// the id's last byte keeps interleaved concurrent requests visually
// distinguishable; assigned ids end in an incrementing digit. Purely
// cosmetic, never correctness-bearing.
const (
	stripeEven = "36" // cyan
	stripeOdd  = "35" // magenta
)

// StripeColor returns the ANSI code for an id's request column.
func StripeColor(id string) string {
	if id == "" {
		return "37"
	}
	if id[len(id)-1]%2 == 0 {
		return stripeEven
	}
	return stripeOdd
}

// AppendTimestamp renders t as DD.MM.YY HH:MM:SS.mmm in local time.
// The millisecond fraction is rounded and clamped at 999 so it never
// rolls the seconds field over.
func AppendTimestamp(buf *bytebufferpool.ByteBuffer, t time.Time) {
	buf.B = t.AppendFormat(buf.B, "02.01.06 15:04:05")
	ms := (t.Nanosecond() + 500_000) / 1_000_000
	if ms > 999 {
		ms = 999
	}
	buf.B = append(buf.B, '.',
		byte('0'+ms/100), byte('0'+ms/10%10), byte('0'+ms%10))
}

// AppendSource renders the source name right-aligned in a fixed-width
// column. The unnamed default source renders blank; names longer than
// the column keep their trailing characters, so the most specific part
// of a dotted name survives.
func AppendSource(buf *bytebufferpool.ByteBuffer, name string) {
	if len(name) > core.SourceWidth {
		name = name[len(name)-core.SourceWidth:]
	}
	for i := len(name); i < core.SourceWidth; i++ {
		buf.B = append(buf.B, ' ')
	}
	buf.B = append(buf.B, name...)
}

func appendStyled(buf *bytebufferpool.ByteBuffer, color, text string, colorize bool) {
	if !colorize || text == "" {
		buf.B = append(buf.B, text...)
		return
	}
	buf.B = append(buf.B, escPrefix...)
	buf.B = append(buf.B, color...)
	buf.B = append(buf.B, escSuffix...)
	buf.B = append(buf.B, text...)
	buf.B = append(buf.B, escReset...)
}

// AppendRequestID renders the correlation column: empty when no id
// resolved, otherwise " REQ <id>" in the id's stripe color.
func AppendRequestID(buf *bytebufferpool.ByteBuffer, id string, colorize bool) {
	if id == "" {
		return
	}
	appendStyled(buf, StripeColor(id), " REQ "+id, colorize)
}

// AppendEntry renders one complete log line:
//
//	<timestamp> <source:15> <level:5><reqid-or-blank> <message>\n
//
// Pure except for nothing: the timestamp is taken from the entry, which
// the reporter stamps at format time.
func AppendEntry(buf *bytebufferpool.ByteBuffer, e core.Entry, colorize bool) {
	AppendTimestamp(buf, e.Time)
	buf.B = append(buf.B, ' ')
	AppendSource(buf, e.Source)
	buf.B = append(buf.B, ' ')
	appendStyled(buf, e.Level.Color(), e.Level.Label(), colorize)
	AppendRequestID(buf, e.RequestID, colorize)
	buf.B = append(buf.B, ' ')
	buf.B = append(buf.B, e.Message...)
	buf.B = append(buf.B, '\n')
}
