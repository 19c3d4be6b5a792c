// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk renders ranked papers into chat messages that never exceed a
// channel's hard size limit.
//
// Papers are rendered one block each, shortening the body along a fixed
// ladder until a block fits the soft budget next to the digest header. Blocks
// are then packed greedily, in rank order, into as few messages as the soft
// budget allows. Every message passes a final check against the hard limit
// before it is returned. Limits are counted in the channel's Measure: UTF-8
// bytes for WeCom, Unicode code points otherwise. Content caps such as the
// title and body ladder are always code points.
package chunk

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	// DefaultHardLimit is the WeCom markdown limit, in UTF-8 bytes.
	DefaultHardLimit = 4096

	// hardMargin is kept free below the hard limit when a message has to be
	// cut by the final check.
	hardMargin = 32

	separator        = "\n\n---\n\n"
	truncationMarker = "\n…(truncated)"
	emptyNotice      = "No matching papers found."
)

// ErrBudget is returned by New when the limits cannot be satisfied.
var ErrBudget = errors.New("invalid message budget")

// Chunker packs rendered papers into messages.
type Chunker struct {
	// HardLimit is the channel-enforced maximum message length.
	HardLimit int

	// SoftBudget is the packing target; it must be below HardLimit.
	SoftBudget int

	// Title heads the first message and names continuation messages.
	Title string

	// Measure is the unit HardLimit and SoftBudget are counted in.
	Measure Measure

	// Now supplies the digest date; defaults to time.Now.
	Now func() time.Time
}

// New returns a Chunker. A zero hard limit uses DefaultHardLimit; a zero soft
// budget leaves one sixteenth of the hard limit as margin.
func New(title string, hardLimit, softBudget int) (*Chunker, error) {
	if hardLimit <= 0 {
		hardLimit = DefaultHardLimit
	}
	if softBudget <= 0 {
		softBudget = hardLimit - hardLimit/16
	}
	if hardLimit <= 2*hardMargin {
		return nil, fmt.Errorf("%w: hard limit %d must exceed %d", ErrBudget, hardLimit, 2*hardMargin)
	}
	if softBudget >= hardLimit {
		return nil, fmt.Errorf("%w: soft budget %d must be below hard limit %d", ErrBudget, softBudget, hardLimit)
	}
	return &Chunker{HardLimit: hardLimit, SoftBudget: softBudget, Title: title}, nil
}

// Len returns the number of code points in s.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Measure is the unit a channel counts message size in.
type Measure int

const (
	CodePoints Measure = iota
	Bytes
)

func (m Measure) String() string {
	if m == Bytes {
		return "bytes"
	}
	return "code points"
}

// Len returns the size of s in m.
func (m Measure) Len(s string) int {
	if m == Bytes {
		return len(s)
	}
	return Len(s)
}

// Truncate returns the longest prefix of s no larger than n in m. The cut
// always falls on a rune boundary.
func (m Measure) Truncate(s string, n int) string {
	if m != Bytes {
		return truncateRunes(s, n)
	}
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Size returns the size of s in the chunker's measure.
func (c *Chunker) Size(s string) int {
	return c.Measure.Len(s)
}

// Chunk renders papers in order and returns the messages to send. It always
// returns at least one message; with no papers that message reports a count
// of zero.
func (c *Chunker) Chunk(papers []types.Paper) []string {
	header := c.header(len(papers))
	if len(papers) == 0 {
		return []string{c.seal(header + emptyNotice)}
	}

	blocks := make([]string, len(papers))
	for i, p := range papers {
		blocks[i] = c.renderFitted(i+1, p, c.Size(header))
	}
	return c.pack(header, blocks)
}

// pack greedily fills messages with blocks. A message is closed when the
// next block would push it past the soft budget; a block that does not fit
// even in a fresh message is cut down and sent on its own.
func (c *Chunker) pack(header string, blocks []string) []string {
	var msgs []string

	cur, curLen, inCur := header, c.Size(header), 0
	next := func() {
		cont := c.continuation(len(msgs))
		cur, curLen, inCur = cont, c.Size(cont), 0
	}

	for _, block := range blocks {
		blockLen := c.Size(block)

		if inCur > 0 && curLen+blockLen > c.SoftBudget {
			msgs = append(msgs, c.seal(cur))
			next()
		}
		if curLen+blockLen > c.SoftBudget {
			msgs = append(msgs, c.seal(cur+c.cut(block, c.SoftBudget-curLen)))
			next()
			continue
		}

		cur += block + separator
		curLen += blockLen + c.Size(separator)
		inCur++
	}
	if inCur > 0 {
		msgs = append(msgs, c.seal(cur))
	}
	return msgs
}

// seal strips the trailing separator and enforces the hard limit.
func (c *Chunker) seal(msg string) string {
	msg = strings.TrimSuffix(msg, separator)
	if c.Size(msg) <= c.HardLimit {
		return msg
	}
	return c.Measure.Truncate(msg, c.HardLimit-hardMargin) + truncationMarker
}

func (c *Chunker) header(total int) string {
	return fmt.Sprintf("# %s\n\n%s | found **%d** papers\n\n", c.Title, c.date(), total)
}

// continuation heads the message that follows part already sealed messages.
func (c *Chunker) continuation(part int) string {
	return fmt.Sprintf("**%s (continued, part %d)**\n\n", c.Title, part+1)
}

func (c *Chunker) date() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().Format("2006-01-02")
}

// cut shortens s to at most budget, in the chunker's measure, including the
// truncation marker. When the budget cannot even hold the marker, the marker
// alone is returned and the hard-limit check in seal still applies.
func (c *Chunker) cut(s string, budget int) string {
	if c.Size(s) <= budget {
		return s
	}
	return c.Measure.Truncate(s, budget-c.Size(truncationMarker)) + truncationMarker
}

// truncateRunes returns the first n code points of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
