package download

import (
	"fmt"
	"io"

	"github.com/docker/go-units"
)

// FormatSize renders a byte count in binary units, or "unknown" when size < 0.
func FormatSize(size int64) string {
	if size < 0 {
		return "unknown"
	}
	return units.BytesSize(float64(size))
}

// progress counts bytes written through it and prints a report each time at
// least interval bytes have passed since the previous one.
type progress struct {
	out          io.Writer
	total        int64 // < 0 when unknown
	interval     int64
	written      int64
	lastReported int64
	reports      int
}

func newProgress(out io.Writer, total, interval int64) *progress {
	return &progress{out: out, total: total, interval: interval}
}

func (p *progress) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.written-p.lastReported >= p.interval {
		p.report()
		p.lastReported = p.written
	}
	return len(b), nil
}

func (p *progress) report() {
	p.reports++
	if p.total > 0 {
		fmt.Fprintf(p.out, "\r  %.1f%%", float64(p.written)/float64(p.total)*100)
		return
	}
	fmt.Fprintf(p.out, "\r  %s", FormatSize(p.written))
}
