package main

import (
	"fmt"

	"github.com/heaplab/brkheap/heap"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newAlignedCmd())
}

func newAlignedCmd() *cobra.Command {
	var size, alignment uint32

	cmd := &cobra.Command{
		Use:   "aligned",
		Short: "Request one aligned allocation and report where it landed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAligned(size, alignment)
		},
	}
	cmd.Flags().Uint32Var(&size, "size", 64, "payload size in bytes")
	cmd.Flags().Uint32Var(&alignment, "alignment", 64, "required alignment, a power of two")
	return cmd
}

func runAligned(size, alignment uint32) error {
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return heap.ErrInvalidAlignment
	}

	h, err := heap.New(heap.Options{})
	if err != nil {
		return fmt.Errorf("failed to construct heap: %w", err)
	}
	defer h.Close()

	ptr, ok := h.AllocateAligned(size, alignment)
	if !ok {
		return fmt.Errorf("allocation of %d bytes at %d-byte alignment failed", size, alignment)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"address":   fmt.Sprintf("0x%x", ptr),
			"size":      size,
			"alignment": alignment,
			"remainder": ptr % uintptr(alignment),
			"info":      h.Info(),
		})
	}
	fmt.Printf("allocated %d bytes at 0x%x (alignment %d, remainder %d)\n", size, ptr, alignment, ptr%uintptr(alignment))
	return nil
}
