package remote

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Transfer tracks one download. It is created per fetch and passed through
// the call chain so progress and throughput never live in package state.
type Transfer struct {
	Start time.Time
	Bytes int64
	// Total is the announced size, or -1 when the server did not send one.
	Total int64

	// OnProgress, when set, is called after every read.
	OnProgress func(*Transfer)

	now func() time.Time
}

// NewTransfer starts tracking a download.
func NewTransfer(onProgress func(*Transfer)) *Transfer {
	return &Transfer{
		Start:      time.Now(),
		Total:      -1,
		OnProgress: onProgress,
		now:        time.Now,
	}
}

// Elapsed returns the time since the transfer started.
func (t *Transfer) Elapsed() time.Duration {
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	return now().Sub(t.Start)
}

// Rate returns the average throughput in bytes per second.
func (t *Transfer) Rate() float64 {
	secs := t.Elapsed().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(t.Bytes) / secs
}

// Fraction returns completion in [0,1], or -1 when the total is unknown.
func (t *Transfer) Fraction() float64 {
	if t.Total <= 0 {
		return -1
	}
	f := float64(t.Bytes) / float64(t.Total)
	if f > 1 {
		f = 1
	}
	return f
}

// Done reports whether every announced byte has arrived.
func (t *Transfer) Done() bool {
	return t.Total > 0 && t.Bytes >= t.Total
}

func (t *Transfer) String() string {
	rate := humanize.Bytes(uint64(t.Rate())) + "/s"
	if t.Total > 0 {
		return fmt.Sprintf("%s / %s (%.0f%%) at %s",
			humanize.Bytes(uint64(t.Bytes)),
			humanize.Bytes(uint64(t.Total)),
			t.Fraction()*100,
			rate,
		)
	}
	return fmt.Sprintf("%s at %s", humanize.Bytes(uint64(t.Bytes)), rate)
}

// Reader wraps r so every read is counted against the transfer.
func (t *Transfer) Reader(r io.Reader) io.Reader {
	return &countingReader{r: r, t: t}
}

type countingReader struct {
	r io.Reader
	t *Transfer
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.t.Bytes += int64(n)
		if c.t.OnProgress != nil {
			c.t.OnProgress(c.t)
		}
	}
	return n, err
}
