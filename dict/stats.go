// File: dict/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dict

import (
	"fmt"
	"strings"
)

// StatsVectLen is the histogram length; the last slot counts chains of
// StatsVectLen-1 entries or more.
const StatsVectLen = 50

// Stats describes the chain-length distribution of a table.
type Stats struct {
	Size          int
	Used          int
	NonEmptySlots int
	MaxChainLen   int
	// AvgChainLen is the mean length of non-empty chains, as counted.
	AvgChainLen float64
	// AvgChainLenComputed is Used / NonEmptySlots; equal to AvgChainLen
	// unless the table is corrupt.
	AvgChainLenComputed float64
	Histogram           [StatsVectLen]int
}

// Stats walks every bucket and returns the chain-length distribution.
func (d *Dict[K, V, C]) Stats() Stats {
	s := Stats{Size: d.size, Used: d.used}
	if d.used == 0 {
		return s
	}

	total := 0
	for _, head := range d.table {
		n := chainLen(head)
		if n > 0 {
			s.NonEmptySlots++
		}
		s.Histogram[min(n, StatsVectLen-1)]++
		s.MaxChainLen = max(s.MaxChainLen, n)
		total += n
	}
	s.AvgChainLen = float64(total) / float64(s.NonEmptySlots)
	s.AvgChainLenComputed = float64(s.Used) / float64(s.NonEmptySlots)
	return s
}

// String renders the report printed by diagnostics.
func (s Stats) String() string {
	if s.Used == 0 {
		return "No stats available for empty dictionaries\n"
	}

	var b strings.Builder
	b.WriteString("Hash table stats:\n")
	fmt.Fprintf(&b, "  table size: %d\n", s.Size)
	fmt.Fprintf(&b, "  number of elements: %d\n", s.Used)
	fmt.Fprintf(&b, "  different slots: %d\n", s.NonEmptySlots)
	fmt.Fprintf(&b, "  max chain length: %d\n", s.MaxChainLen)
	fmt.Fprintf(&b, "  avg chain length (counted): %.02f\n", s.AvgChainLen)
	fmt.Fprintf(&b, "  avg chain length (computed): %.02f\n", s.AvgChainLenComputed)
	b.WriteString("  Chain length distribution:\n")
	for i, n := range s.Histogram {
		if n == 0 {
			continue
		}
		prefix := ""
		if i == StatsVectLen-1 {
			prefix = ">= "
		}
		fmt.Fprintf(&b, "   %s%d: %d (%.02f%%)\n", prefix, i, n, float64(n)/float64(s.Size)*100)
	}
	return b.String()
}
