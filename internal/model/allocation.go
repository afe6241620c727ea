package model

// PageSizeKB is the size of one base page in kilobytes.
// page_owner records orders relative to the base page size; all reference
// tooling assumes 4 KiB pages, so derived memory figures do too.
const PageSizeKB = 4

// Allocation is a single page allocation event parsed from a page_owner
// dump. It is transient: the parser produces it, an aggregator folds it,
// and it is not retained afterwards.
type Allocation struct {
	// Order is the allocation order: the allocation spans 2^Order base pages.
	Order int `json:"order"`

	// Pages is 2^Order, precomputed by the parser.
	Pages int64 `json:"pages"`

	// Module is the kernel module/driver attributed in the allocation's
	// call trace (the first bracketed identifier in the block). Empty when
	// the block carried no bracketed token; module-keyed aggregations
	// discard such events.
	Module string `json:"module,omitempty"`

	// Process is the process name from the allocation header, when the
	// dump carries pid/tgid information ("Unknown" headers leave it empty).
	Process string `json:"process,omitempty"`

	// PID is the allocating process ID, or -1 when the header has none.
	PID int `json:"pid"`

	// Trace holds the header line followed by the stack trace lines of
	// the block, in input order, excluding PFN lines. Keeping the header
	// makes traces order-sensitive when deduplicated.
	Trace []string `json:"trace,omitempty"`
}

// ParseStats counts the blocks and lines the parser could not turn into
// allocation events. Skips are best-effort parsing of noisy logs, not
// errors; the counters exist so reports can disclose them.
type ParseStats struct {
	// Blocks is the total number of "Page allocated" headers seen.
	Blocks int `json:"blocks"`

	// Emitted is the number of blocks that produced an allocation event.
	Emitted int `json:"emitted"`

	// MissingOrder counts headers whose order field could not be parsed.
	// Such blocks are skipped entirely; the order of a previous block is
	// never reused.
	MissingOrder int `json:"missing_order"`

	// NoModule counts emitted blocks that carried no bracketed module
	// token before the terminating blank line (or end of input).
	NoModule int `json:"no_module"`

	// BadLines counts lines the loose order-only scanner rejected because
	// the order field was not numeric.
	BadLines int `json:"bad_lines"`
}

// Add accumulates other into s. Used when merging per-file statistics.
func (s *ParseStats) Add(other ParseStats) {
	s.Blocks += other.Blocks
	s.Emitted += other.Emitted
	s.MissingOrder += other.MissingOrder
	s.NoModule += other.NoModule
	s.BadLines += other.BadLines
}
