package aggregate

import (
	"testing"

	"github.com/spare00/sospy/internal/model"
)

// slabAlloc builds an allocation event with the given trace lines.
func slabAlloc(order int, lines ...string) model.Allocation {
	return model.Allocation{
		Order: order,
		Pages: 1 << order,
		Trace: lines,
	}
}

// TestSlabAggregator tests slab classification and the per-order split.
func TestSlabAggregator(t *testing.T) {
	t.Parallel()

	t.Run("folds matching functions", func(t *testing.T) {
		t.Parallel()

		a := NewSlabAggregator()
		a.Fold(slabAlloc(0, "kmem_cache_alloc+0x1a/0x2b", "other_func+0x3"))
		a.Fold(slabAlloc(2, "kmem_cache_alloc+0x1a/0x2b"))

		rows := a.Rows()
		if len(rows) != 1 {
			t.Fatalf("expected 1 function row, got %d", len(rows))
		}
		if rows[0].Function != "kmem_cache_alloc" {
			t.Errorf("expected kmem_cache_alloc, got %q", rows[0].Function)
		}
		if rows[0].Count != 2 || rows[0].Pages != 5 {
			t.Errorf("unexpected totals: %+v", rows[0])
		}
	})

	t.Run("every matching line counts", func(t *testing.T) {
		t.Parallel()

		a := NewSlabAggregator()
		a.Fold(slabAlloc(0, "__kmalloc+0x1", "___slab_alloc+0x2", "plain_func+0x3"))

		rows := a.Rows()
		if len(rows) != 2 {
			t.Fatalf("expected 2 function rows, got %d", len(rows))
		}
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		t.Parallel()

		a := NewSlabAggregator()
		a.Fold(slabAlloc(0, "KMALLOC_large+0x1"))
		if len(a.Rows()) != 1 {
			t.Error("expected uppercase kmalloc variant to match")
		}
	})

	t.Run("splits pages by order", func(t *testing.T) {
		t.Parallel()

		a := NewSlabAggregator()
		a.Fold(slabAlloc(0, "allocate_slab+0x1"))
		a.Fold(slabAlloc(0, "plain_func+0x1"))
		a.Fold(slabAlloc(3, "plain_func+0x1"))

		rows := a.OrderRows()
		if len(rows) != 2 {
			t.Fatalf("expected 2 order rows, got %d", len(rows))
		}
		if rows[0].Order != 0 || rows[0].SlabPages != 1 || rows[0].NonSlabPages != 1 {
			t.Errorf("unexpected order 0 row: %+v", rows[0])
		}
		if rows[1].Order != 3 || rows[1].SlabPages != 0 || rows[1].NonSlabPages != 8 {
			t.Errorf("unexpected order 3 row: %+v", rows[1])
		}
		if rows[1].TotalPages() != 8 {
			t.Errorf("expected total 8, got %d", rows[1].TotalPages())
		}
	})

	t.Run("header line never classifies a block", func(t *testing.T) {
		t.Parallel()

		// A process named after a cache must not turn the block into a
		// slab allocation; only stack lines are matched.
		a := NewSlabAggregator()
		a.Fold(slabAlloc(0,
			"Page allocated via order 0, mask 0x0, pid 1, tgid 1 (cachefilesd), ts 1",
			"plain_func+0x1",
		))

		if len(a.Rows()) != 0 {
			t.Error("expected no slab function rows")
		}
		rows := a.OrderRows()
		if len(rows) != 1 || rows[0].SlabPages != 0 || rows[0].NonSlabPages != 1 {
			t.Errorf("expected non-slab classification, got %+v", rows)
		}
	})

	t.Run("ranks functions by pages", func(t *testing.T) {
		t.Parallel()

		a := NewSlabAggregator()
		a.Fold(slabAlloc(0, "__kmalloc+0x1"))
		a.Fold(slabAlloc(4, "kmem_cache_alloc_node+0x1"))

		rows := a.Rows()
		if rows[0].Function != "kmem_cache_alloc_node" {
			t.Errorf("expected heaviest function first, got %q", rows[0].Function)
		}
	})
}

// TestProcessModuleAggregator tests the (process, module) cross totals.
func TestProcessModuleAggregator(t *testing.T) {
	t.Parallel()

	event := func(process, module string, order int) model.Allocation {
		return model.Allocation{
			Order:   order,
			Pages:   1 << order,
			Module:  module,
			Process: process,
		}
	}

	t.Run("folds per pair", func(t *testing.T) {
		t.Parallel()

		a := NewProcessModuleAggregator()
		a.Fold(event("systemd", "vmxnet3", 0))
		a.Fold(event("systemd", "vmxnet3", 0))
		a.Fold(event("kswapd0", "vmxnet3", 2))
		a.Fold(event("systemd", "xfs", 1))

		rows := a.Rows()
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		// Sorted by module, then pages descending: vmxnet3 rows first with
		// kswapd0 (4 pages) ahead of systemd (2 pages).
		if rows[0].Module != "vmxnet3" || rows[0].Process != "kswapd0" || rows[0].Pages != 4 {
			t.Errorf("unexpected first row: %+v", rows[0])
		}
		if rows[1].Process != "systemd" || rows[1].Count != 2 || rows[1].Pages != 2 {
			t.Errorf("unexpected second row: %+v", rows[1])
		}
		if rows[2].Module != "xfs" {
			t.Errorf("unexpected third row: %+v", rows[2])
		}
	})

	t.Run("discards events without a module", func(t *testing.T) {
		t.Parallel()

		a := NewProcessModuleAggregator()
		a.Fold(event("systemd", "", 0))
		if len(a.Rows()) != 0 {
			t.Error("expected empty-module event to be discarded")
		}
	})

	t.Run("missing process folds into Unknown", func(t *testing.T) {
		t.Parallel()

		a := NewProcessModuleAggregator()
		a.Fold(event("", "vmxnet3", 0))

		rows := a.Rows()
		if len(rows) != 1 || rows[0].Process != "Unknown" {
			t.Errorf("expected Unknown bucket, got %+v", rows)
		}
	})
}
