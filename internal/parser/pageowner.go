package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/spare00/sospy/internal/model"
)

// maxOrder is the largest allocation order accepted by the scanners.
// Anything above this would overflow the page count and cannot come from
// a real kernel (MAX_PAGE_ORDER is 10 on stock kernels).
const maxOrder = 62

// Compiled once at package level; both scanners are regexp-driven and may
// run over multi-gigabyte dumps.
var (
	// headerFullRe matches the modern page_owner header that carries
	// pid/tgid/process/timestamp fields.
	headerFullRe = regexp.MustCompile(`order (\d+), mask .*?, pid (\d+), tgid (\d+) \((.*?)\), ts (\d+)`)

	// headerOrderRe matches the older header shape with only order and mask.
	headerOrderRe = regexp.MustCompile(`order (\d+), mask`)

	// moduleRe matches a bracketed module identifier in a stack trace line.
	// Only the first match on a line is used.
	moduleRe = regexp.MustCompile(`\[([A-Za-z0-9_]+)\]`)
)

// BlockScanner parses the block format of a page_owner dump.
//
// Each block starts with a "Page allocated" header line, continues with
// stack trace lines, and ends at a blank line (or the next header, or end
// of input). The scanner emits at most one allocation event per block.
// The module attributed to the event is the first bracketed identifier
// found in the block's stack lines; blocks without one still emit an event
// with an empty module so process and trace aggregations can see them.
// The header line is kept as the first element of the event's trace, so
// otherwise-identical traces with different orders stay distinct.
//
// A header whose order field cannot be parsed marks the whole block
// skipped. The order of a previous block is never reused: reusing stale
// state on malformed input silently misattributes pages.
type BlockScanner struct {
	// buffered allocation state for the block currently being scanned
	cur     model.Allocation
	inBlock bool
	skipped bool
}

// NewBlockScanner creates a BlockScanner.
func NewBlockScanner() *BlockScanner {
	return &BlockScanner{}
}

// Scan reads the dump from r and calls emit for every parsed allocation
// block. It returns counters for the blocks it saw and skipped. The scan
// is single-pass; Scan must not be called twice on the same reader.
func (s *BlockScanner) Scan(r io.Reader, emit func(model.Allocation)) (model.ParseStats, error) {
	var stats model.ParseStats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Text()

		switch {
		case strings.HasPrefix(line, "Page allocated"):
			s.flush(emit, &stats)
			stats.Blocks++
			s.startBlock(line, &stats)

		case strings.TrimSpace(line) == "":
			// Blank line ends the block whether or not a module was found.
			s.flush(emit, &stats)

		case s.inBlock && !s.skipped:
			s.traceLine(line)
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan page_owner dump: %w", err)
	}

	// A block cut off by end of input still counts.
	s.flush(emit, &stats)

	return stats, nil
}

// startBlock parses a "Page allocated" header line and primes the block
// state. Headers without a parsable order mark the block skipped.
func (s *BlockScanner) startBlock(line string, stats *model.ParseStats) {
	s.inBlock = true
	s.skipped = false
	s.cur = model.Allocation{PID: -1}

	if m := headerFullRe.FindStringSubmatch(line); m != nil {
		order := atoiOrder(m[1])
		if order < 0 {
			s.skipBlock(stats)
			return
		}
		s.cur.Order = order
		s.cur.Pages = 1 << order
		s.cur.PID = mustAtoi(m[2])
		s.cur.Process = m[4]
		s.cur.Trace = []string{strings.TrimSpace(line)}
		return
	}

	if m := headerOrderRe.FindStringSubmatch(line); m != nil {
		order := atoiOrder(m[1])
		if order < 0 {
			s.skipBlock(stats)
			return
		}
		s.cur.Order = order
		s.cur.Pages = 1 << order
		s.cur.Trace = []string{strings.TrimSpace(line)}
		return
	}

	s.skipBlock(stats)
}

// skipBlock marks the current block unusable and counts it.
func (s *BlockScanner) skipBlock(stats *model.ParseStats) {
	s.inBlock = false
	s.skipped = true
	stats.MissingOrder++
}

// traceLine folds one stack trace line into the current block.
// PFN lines describe the page itself, not the call path, and are ignored.
func (s *BlockScanner) traceLine(line string) {
	if strings.HasPrefix(line, "PFN") {
		return
	}

	s.cur.Trace = append(s.cur.Trace, strings.TrimSpace(line))

	if s.cur.Module == "" {
		if m := moduleRe.FindStringSubmatch(line); m != nil {
			s.cur.Module = m[1]
		}
	}
}

// flush emits the buffered block, if any, and resets the block state.
func (s *BlockScanner) flush(emit func(model.Allocation), stats *model.ParseStats) {
	if s.inBlock && !s.skipped {
		stats.Emitted++
		if s.cur.Module == "" {
			stats.NoModule++
		}
		emit(s.cur)
	}
	s.inBlock = false
	s.skipped = false
	s.cur = model.Allocation{}
}

// atoiOrder parses an order field, returning -1 for values that are not
// usable as a shift amount.
func atoiOrder(s string) int {
	n := mustAtoi(s)
	if n < 0 || n > maxOrder {
		return -1
	}
	return n
}

// mustAtoi converts digits already matched by \d+ in a regexp.
// Returns -1 on overflow instead of panicking.
func mustAtoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
		if n < 0 {
			return -1
		}
	}
	return n
}
