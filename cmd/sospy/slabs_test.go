package main

import (
	"path/filepath"
	"strings"
	"testing"
)

// slabDump pairs a slab allocation by systemd with a driver allocation
// by kswapd0, both in the full header format.
const slabDump = `Page allocated via order 0, mask 0x100cca(GFP_HIGHUSER_MOVABLE), pid 100, tgid 100 (systemd), ts 1000 ns
 __alloc_pages_nodemask+0x2e2/0x330
 kmem_cache_alloc+0x1a4/0x1e0
 xfs_buf_get_map+0x2f0/0x330 [xfs]

Page allocated via order 1, mask 0x100cca(GFP_HIGHUSER_MOVABLE), pid 200, tgid 200 (kswapd0), ts 2000 ns
 __alloc_pages_nodemask+0x2e2/0x330
 vmxnet3_rq_rx_complete+0x68f/0xd00 [vmxnet3]
`

// TestSlabsCmd tests the slabs command end to end.
func TestSlabsCmd(t *testing.T) {
	t.Parallel()

	t.Run("renders function table and order split", func(t *testing.T) {
		t.Parallel()

		output, err := runCommand(t, "slabs", writeDump(t, slabDump))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(output, "Slab Functions") {
			t.Errorf("missing function table in:\n%s", output)
		}
		if !strings.Contains(output, "kmem_cache_alloc") {
			t.Errorf("missing slab function row in:\n%s", output)
		}
		if !strings.Contains(output, "Non Slabs (kB)") {
			t.Errorf("missing order split table in:\n%s", output)
		}
	})

	t.Run("rejects missing argument", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"slabs"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for missing argument")
		}
	})

	t.Run("rejects unreadable input", func(t *testing.T) {
		t.Parallel()

		_, err := runCommand(t, "slabs", filepath.Join(t.TempDir(), "missing.txt"))
		if err == nil {
			t.Error("expected error for missing input file")
		}
	})
}

// TestSummaryModuleFilter tests summary --filter-module end to end.
func TestSummaryModuleFilter(t *testing.T) {
	t.Parallel()

	t.Run("lists the processes using the module", func(t *testing.T) {
		t.Parallel()

		output, err := runCommand(t, "summary",
			writeDump(t, slabDump), "--filter-module", "vmxnet3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(output, "Processes using module 'vmxnet3'") {
			t.Errorf("missing filtered heading in:\n%s", output)
		}
		if !strings.Contains(output, "kswapd0") {
			t.Errorf("missing kswapd0 row in:\n%s", output)
		}
		if strings.Contains(output, "systemd") {
			t.Errorf("unexpected systemd row (allocates through xfs only) in:\n%s", output)
		}
	})

	t.Run("unknown module reports no allocations", func(t *testing.T) {
		t.Parallel()

		output, err := runCommand(t, "summary",
			writeDump(t, slabDump), "--filter-module", "nosuchmod")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "No allocations found for module 'nosuchmod'.") {
			t.Errorf("missing empty-filter message in:\n%s", output)
		}
	})
}

// TestTracesProcessFilter tests traces --process end to end.
func TestTracesProcessFilter(t *testing.T) {
	t.Parallel()

	output, err := runCommand(t, "traces",
		writeDump(t, slabDump), "--process", "kswapd0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "vmxnet3_rq_rx_complete") {
		t.Errorf("missing kswapd0's trace in:\n%s", output)
	}
	if strings.Contains(output, "kmem_cache_alloc") {
		t.Errorf("unexpected systemd trace in:\n%s", output)
	}
}
