package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spare00/sospy/internal/model"
)

// LineScanner parses the loose line format used by the order-only report.
//
// Any line beginning with the token "Page" is inspected; the fifth
// whitespace-separated field, with a trailing comma stripped, is the
// allocation order ("Page allocated via order 2, ..."). Lines whose order
// field is not numeric are counted and skipped. This rule is deliberately
// looser than the BlockScanner's and is kept separate because its field
// extraction differs: it never looks at trace lines or modules.
type LineScanner struct{}

// NewLineScanner creates a LineScanner.
func NewLineScanner() *LineScanner {
	return &LineScanner{}
}

// Scan reads the dump from r and calls emit with the order and page count
// of every matching line.
func (s *LineScanner) Scan(r io.Reader, emit func(order int, pages int64)) (model.ParseStats, error) {
	var stats model.ParseStats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Page") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			stats.BadLines++
			continue
		}

		order, err := strconv.Atoi(strings.Trim(fields[4], ","))
		if err != nil || order < 0 || order > maxOrder {
			stats.BadLines++
			continue
		}

		emit(order, 1<<order)
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan page_owner dump: %w", err)
	}

	return stats, nil
}
