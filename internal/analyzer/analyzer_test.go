package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spare00/sospy/internal/model"
)

// testDump holds two vmxnet3 order-0 blocks and one xfs order-2 block.
const testDump = `Page allocated via order 0, mask 0x2a20(GFP_ATOMIC)
 __alloc_pages_nodemask+0x2e2/0x330
 vmxnet3_rq_rx_complete+0x68f/0xd00 [vmxnet3]

Page allocated via order 0, mask 0x2a20(GFP_ATOMIC)
 __alloc_pages_nodemask+0x2e2/0x330
 vmxnet3_rq_rx_complete+0x68f/0xd00 [vmxnet3]

Page allocated via order 2, mask 0x1000(GFP_KERNEL)
 __alloc_pages_nodemask+0x2e2/0x330
 xfs_buf_allocate_memory+0x2f0/0x330 [xfs]
`

// slabDump holds two full-header blocks: a slab allocation by systemd and
// a non-slab driver allocation by kswapd0.
const slabDump = `Page allocated via order 0, mask 0x100cca(GFP_HIGHUSER_MOVABLE), pid 100, tgid 100 (systemd), ts 1000 ns
 __alloc_pages_nodemask+0x2e2/0x330
 kmem_cache_alloc+0x1a4/0x1e0
 xfs_buf_get_map+0x2f0/0x330 [xfs]

Page allocated via order 1, mask 0x100cca(GFP_HIGHUSER_MOVABLE), pid 200, tgid 200 (kswapd0), ts 2000 ns
 __alloc_pages_nodemask+0x2e2/0x330
 vmxnet3_rq_rx_complete+0x68f/0xd00 [vmxnet3]
`

// writeDump writes the dump content to a temp file and returns its path.
func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page_owner.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write dump: %v", err)
	}
	return path
}

// TestAnalyzerAnalyze tests end-to-end analysis of a dump file.
func TestAnalyzerAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("aggregates all sections", func(t *testing.T) {
		t.Parallel()

		a := New()
		report, err := a.Analyze(context.Background(), writeDump(t, testDump))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.TotalAllocations != 3 {
			t.Errorf("expected 3 allocations, got %d", report.TotalAllocations)
		}
		if report.TotalPages != 6 {
			t.Errorf("expected 6 pages, got %d", report.TotalPages)
		}

		if len(report.Modules) != 2 {
			t.Fatalf("expected 2 module rows, got %d", len(report.Modules))
		}
		// xfs contributes 4 pages, vmxnet3 contributes 2: descending order.
		if report.Modules[0].Module != "xfs" || report.Modules[0].Pages != 4 {
			t.Errorf("unexpected first module row: %+v", report.Modules[0])
		}
		if report.Modules[1].Module != "vmxnet3" || report.Modules[1].Count != 2 || report.Modules[1].Pages != 2 {
			t.Errorf("unexpected second module row: %+v", report.Modules[1])
		}

		if len(report.ModuleOrders) != 2 {
			t.Errorf("expected 2 module-order rows, got %d", len(report.ModuleOrders))
		}

		// Order totals come from the loose line scan over the same headers.
		if len(report.Orders) != 2 {
			t.Fatalf("expected 2 order rows, got %d", len(report.Orders))
		}
		if report.TotalOrderPages != 6 {
			t.Errorf("expected grand total 6, got %d", report.TotalOrderPages)
		}

		if len(report.Traces) != 2 {
			t.Errorf("expected 2 distinct traces, got %d", len(report.Traces))
		}
	})

	t.Run("empty file yields empty report", func(t *testing.T) {
		t.Parallel()

		report, err := New().Analyze(context.Background(), writeDump(t, ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Modules) != 0 || len(report.Orders) != 0 || report.TotalOrderPages != 0 {
			t.Errorf("expected empty report, got %+v", report)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := New().Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("malformed block does not crash", func(t *testing.T) {
		t.Parallel()

		dump := "Page allocated via broken header\n junk line\n\n" + testDump
		report, err := New().Analyze(context.Background(), writeDump(t, dump))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Stats.MissingOrder != 1 {
			t.Errorf("expected 1 missing-order skip, got %d", report.Stats.MissingOrder)
		}
		if report.TotalAllocations != 3 {
			t.Errorf("expected 3 allocations, got %d", report.TotalAllocations)
		}
	})

	t.Run("classifies slab allocations", func(t *testing.T) {
		t.Parallel()

		report, err := New().Analyze(context.Background(), writeDump(t, slabDump))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Slabs) != 1 {
			t.Fatalf("expected 1 slab function row, got %d", len(report.Slabs))
		}
		if report.Slabs[0].Function != "kmem_cache_alloc" || report.Slabs[0].Pages != 1 {
			t.Errorf("unexpected slab row: %+v", report.Slabs[0])
		}

		if len(report.SlabOrders) != 2 {
			t.Fatalf("expected 2 slab order rows, got %d", len(report.SlabOrders))
		}
		if report.SlabOrders[0].SlabPages != 1 || report.SlabOrders[0].NonSlabPages != 0 {
			t.Errorf("unexpected order 0 split: %+v", report.SlabOrders[0])
		}
		if report.SlabOrders[1].SlabPages != 0 || report.SlabOrders[1].NonSlabPages != 2 {
			t.Errorf("unexpected order 1 split: %+v", report.SlabOrders[1])
		}
	})

	t.Run("builds the process module cross table", func(t *testing.T) {
		t.Parallel()

		report, err := New().Analyze(context.Background(), writeDump(t, slabDump))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.ProcessModules) != 2 {
			t.Fatalf("expected 2 cross rows, got %d", len(report.ProcessModules))
		}
		// Sorted by module ascending: vmxnet3 before xfs.
		if report.ProcessModules[0].Process != "kswapd0" || report.ProcessModules[0].Module != "vmxnet3" {
			t.Errorf("unexpected first cross row: %+v", report.ProcessModules[0])
		}
		if report.ProcessModules[1].Process != "systemd" || report.ProcessModules[1].Module != "xfs" {
			t.Errorf("unexpected second cross row: %+v", report.ProcessModules[1])
		}
	})

	t.Run("trace process filter applies", func(t *testing.T) {
		t.Parallel()

		report, err := New(WithTraceProcess("systemd")).Analyze(context.Background(), writeDump(t, slabDump))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Traces) != 1 {
			t.Fatalf("expected 1 trace, got %d", len(report.Traces))
		}
		if !strings.Contains(report.Traces[0].Lines[0], "pid 100") {
			t.Errorf("expected systemd's trace, got %q", report.Traces[0].Lines[0])
		}
		// The filter narrows traces only; other aggregations stay whole.
		if report.TotalAllocations != 2 {
			t.Errorf("expected 2 allocations, got %d", report.TotalAllocations)
		}
	})

	t.Run("trace limit applies", func(t *testing.T) {
		t.Parallel()

		report, err := New(WithTopTraces(1)).Analyze(context.Background(), writeDump(t, testDump))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Traces) != 1 {
			t.Fatalf("expected 1 trace, got %d", len(report.Traces))
		}
		if report.Traces[0].Count != 2 {
			t.Errorf("expected most frequent trace count 2, got %d", report.Traces[0].Count)
		}
	})
}

// TestBatchProcessor tests concurrent multi-file analysis.
func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("keeps input order", func(t *testing.T) {
		t.Parallel()

		files := []string{
			writeDump(t, testDump),
			writeDump(t, ""),
			writeDump(t, testDump),
		}

		bp := NewBatchProcessor(New(), WithConcurrency(2))
		reports, err := bp.ProcessBatch(context.Background(), files)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != 3 {
			t.Fatalf("expected 3 reports, got %d", len(reports))
		}
		if reports[0].TotalAllocations != 3 || reports[1].TotalAllocations != 0 || reports[2].TotalAllocations != 3 {
			t.Errorf("unexpected report totals: %d, %d, %d",
				reports[0].TotalAllocations, reports[1].TotalAllocations, reports[2].TotalAllocations)
		}
	})

	t.Run("failed file leaves nil slot", func(t *testing.T) {
		t.Parallel()

		files := []string{
			writeDump(t, testDump),
			filepath.Join(t.TempDir(), "missing.txt"),
		}

		bp := NewBatchProcessor(New())
		reports, err := bp.ProcessBatch(context.Background(), files)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reports[0] == nil {
			t.Error("expected first report to succeed")
		}
		if reports[1] != nil {
			t.Error("expected nil slot for missing file")
		}
	})

	t.Run("callback sees every file", func(t *testing.T) {
		t.Parallel()

		files := []string{writeDump(t, testDump), writeDump(t, testDump)}

		var mu sync.Mutex
		seen := make([]bool, len(files))

		bp := NewBatchProcessor(New(), WithConcurrency(2))
		err := bp.ProcessBatchWithCallback(context.Background(), files, func(report *model.Report, index int, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("unexpected per-file error: %v", err)
			}
			if report == nil {
				t.Errorf("nil report for index %d", index)
			}
			seen[index] = true
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, ok := range seen {
			if !ok {
				t.Errorf("callback never called for index %d", i)
			}
		}
	})
}
