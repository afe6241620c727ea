// Package parser turns raw page_owner dump text into allocation events.
//
// Two scanners cover the two shapes of input sospy accepts:
//   - BlockScanner: the full block format ("Page allocated via order N, ..."
//     header, stack trace lines, blank-line terminator). One event per block.
//   - LineScanner: the loose format used by order-only summaries, where any
//     line starting with the token "Page" carries the order as its fifth
//     whitespace-separated field.
//
// Both scanners are single-pass over an io.Reader and are not restartable;
// callers re-read the input to scan it again. Malformed blocks and lines
// are skipped and counted, never fatal: page_owner dumps captured from
// live systems are routinely truncated or interleaved with other console
// output.
package parser
