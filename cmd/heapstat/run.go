package main

import (
	"fmt"
	"math/rand"

	"github.com/heaplab/brkheap/heap"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

type runReport struct {
	Ops        int        `json:"ops"`
	Failures   int        `json:"failures"`
	Stats      heap.Stats `json:"stats"`
	Info       heap.Info  `json:"info"`
	FreeLists  [32]int    `json:"freeListOccupancy"`
	LiveBlocks int        `json:"liveBlocks"`
}

func newRunCmd() *cobra.Command {
	var ops int
	var seed int64
	var maxSize int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a synthetic allocate/free/reallocate workload and report the result",
		Long: `run drives a pseudo-random mix of allocate, release, and reallocate
calls against a fresh heap and prints the resulting arena layout and
allocation statistics.

Example:
  heapstat run --ops 5000 --max-size 4096 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkload(ops, seed, maxSize)
		},
	}
	cmd.Flags().IntVar(&ops, "ops", 2000, "number of allocator operations to perform")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed, for reproducible workloads")
	cmd.Flags().IntVar(&maxSize, "max-size", 2048, "largest single allocation request, in bytes")
	return cmd
}

func runWorkload(ops int, seed int64, maxSize int) error {
	h, err := heap.New(heap.Options{})
	if err != nil {
		return fmt.Errorf("failed to construct heap: %w", err)
	}
	defer h.Close()

	rng := rand.New(rand.NewSource(seed))
	live := make([]uintptr, 0, ops)
	failures := 0

	for i := 0; i < ops; i++ {
		switch {
		case len(live) == 0 || rng.Intn(3) != 0:
			size := uint32(1 + rng.Intn(maxSize))
			ptr, ok := h.Allocate(size)
			if !ok {
				failures++
				printVerbose("allocate(%d) failed\n", size)
				continue
			}
			printVerbose("allocate(%d) -> 0x%x\n", size, ptr)
			live = append(live, ptr)
		case rng.Intn(2) == 0:
			idx := rng.Intn(len(live))
			printVerbose("release(0x%x)\n", live[idx])
			h.Release(live[idx])
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		default:
			idx := rng.Intn(len(live))
			size := uint32(1 + rng.Intn(maxSize))
			newPtr, ok := h.Reallocate(live[idx], size)
			if !ok {
				failures++
				printVerbose("reallocate(0x%x, %d) failed\n", live[idx], size)
				continue
			}
			printVerbose("reallocate(0x%x, %d) -> 0x%x\n", live[idx], size, newPtr)
			live[idx] = newPtr
		}
	}

	report := runReport{
		Ops:        ops,
		Failures:   failures,
		Stats:      h.Stats(),
		Info:       h.Info(),
		LiveBlocks: len(live),
	}
	h.Walk(func(r heap.Region) bool {
		if r.IsFree {
			report.FreeLists[r.FreeList]++
		}
		return true
	})

	if jsonOut {
		return printJSON(report)
	}

	fmt.Printf("ops: %d  failures: %d  live blocks: %d\n", report.Ops, report.Failures, report.LiveBlocks)
	fmt.Printf("arena: %d  used: %d  free: %d  free regions: %d\n",
		report.Info.Arena, report.Info.Uordblks, report.Info.Fordblks, report.Info.Ordblks)
	fmt.Printf("alloc calls: %d  free calls: %d  grow calls: %d  splits: %d  coalesce fwd/back: %d/%d\n",
		report.Stats.AllocCalls, report.Stats.FreeCalls, report.Stats.GrowCalls,
		report.Stats.SplitCount, report.Stats.CoalesceForward, report.Stats.CoalesceBackward)
	return nil
}
