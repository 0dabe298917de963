// seqcov: a high-performance tool for estimating sequence coverage
// and GC composition from k-mer counts.
// Copyright (c) 2021-2026 the seqcov authors.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License along with this program. If not, see
// <https://github.com/kmertools/seqcov/blob/master/LICENSE.txt>.

// Package sect implements the parallel batch coverage engine: the
// per-sequence coverage/GC analysis, the scheduler that fans a batch
// of sequences out over worker goroutines, the per-worker
// contamination matrix accumulation with a single final merge, and
// the report emitters for the derived files.
package sect

import (
	"log"
	"sort"

	"github.com/willf/bitset"

	"github.com/kmertools/seqcov/fasta"
	"github.com/kmertools/seqcov/kmer"
)

// Default run configuration values.
const (
	DefaultMerLen  = 27
	DefaultGcBins  = 1001
	DefaultCvgBins = 1001

	// BatchSize is the number of records processed per batch.
	BatchSize = 1024
)

// A Conf holds the run configuration, fixed for the lifetime of one
// run. MerLen and Canonical must agree with the k-mer count index the
// run uses; Run checks this.
type Conf struct {
	MerLen       int
	Canonical    bool
	Threads      int
	GcBins       int
	CvgBins      int
	CvgLogscale  bool
	Median       bool
	NoCountStats bool
}

// A Result holds the coverage and composition statistics of one
// sequence. Counts is nil for sequences shorter than the k-mer
// length. NonZeroWindows is the number of windows with a non-zero
// k-mer count.
type Result struct {
	Counts         []uint64
	Coverage       float64
	GC             float64
	Length         int
	NonZeroWindows int
}

// Windows returns the number of k-mer windows the sequence had.
func (result Result) Windows() int {
	return len(result.Counts)
}

// PercentCovered returns the percentage of windows with a non-zero
// k-mer count, 0 for sequences that were too short to analyze.
func (result Result) PercentCovered() float64 {
	if len(result.Counts) == 0 {
		return 0
	}
	return 100 * float64(result.NonZeroWindows) / float64(len(result.Counts))
}

// ProfileSequence computes the per-window k-mer counts, aggregate
// coverage, and GC fraction of a single sequence.
//
// Windows containing a base outside A/C/G/T have count 0, since the
// index cannot represent ambiguous bases. Sequences shorter than the
// k-mer length are reported with coverage 0 and no window counts;
// this is a warning, not an error. The GC denominator excludes N
// bases; a sequence consisting entirely of Ns gets GC fraction 0.
func ProfileSequence(conf Conf, index kmer.Index, record fasta.Record) (result Result) {
	k := index.K()
	seq := record.Seq
	result.Length = len(seq)

	if len(seq) < k {
		log.Printf("%v is too short to compute coverage. Sequence length is %v and k-mer length is %v. Setting sequence coverage to 0.", record.Name, len(seq), k)
	} else {
		nbCounts := len(seq) - k + 1
		counts := make([]uint64, nbCounts)
		covered := bitset.New(uint(nbCounts))
		mask := kmer.Mask(k)
		var sum uint64
		var mer uint64
		run := 0
		for i, base := range seq {
			bits, ok := kmer.BaseBits(base)
			if !ok {
				run = 0
				continue
			}
			mer = (mer<<2 | bits) & mask
			if run++; run < k {
				continue
			}
			m := mer
			if index.Canonical() {
				m = kmer.Canonical(m, k)
			}
			if count := index.Lookup(m); count != 0 {
				counts[i-k+1] = count
				sum += count
				covered.Set(uint(i - k + 1))
			}
		}
		result.Counts = counts
		result.NonZeroWindows = int(covered.Count())
		if conf.Median {
			sorted := make([]uint64, nbCounts)
			copy(sorted, counts)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})
			// The upper median: for an even number of windows this is
			// the higher of the two middle elements, not their mean.
			result.Coverage = float64(sorted[nbCounts/2])
		} else {
			result.Coverage = float64(sum) / float64(nbCounts)
		}
	}

	var gs, cs, ns int
	for _, base := range seq {
		switch base {
		case 'G', 'g':
			gs++
		case 'C', 'c':
			cs++
		case 'N', 'n':
			ns++
		}
	}
	if denominator := len(seq) - ns; denominator > 0 {
		result.GC = float64(gs+cs) / float64(denominator)
	}
	return result
}
