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

package sect

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/kmertools/seqcov/fasta"
	"github.com/kmertools/seqcov/internal"
)

// Metadata keys of the contamination matrix header block.
const (
	KeyTitle     = "# Title:"
	KeyXLabel    = "# XLabel:"
	KeyYLabel    = "# YLabel:"
	KeyZLabel    = "# ZLabel:"
	KeyNbColumns = "# Columns:"
	KeyNbRows    = "# Rows:"
	KeyMaxVal    = "# MaxVal:"
	KeyTranspose = "# Transpose:"
	MetaEnd      = "###"
)

// WriteCounts writes the per-window k-mer counts of a batch: for each
// record a header line naming the sequence, then one line of
// space-separated window counts, or a literal 0 if the sequence was
// too short to analyze.
func WriteCounts(out *bufio.Writer, records []fasta.Record, results []Result) {
	for i, record := range records {
		internal.WriteString(out, ">")
		internal.WriteString(out, record.Name)
		internal.WriteString(out, "\n")
		counts := results[i].Counts
		if len(counts) == 0 {
			internal.WriteString(out, "0\n")
			continue
		}
		for j, count := range counts {
			if j > 0 {
				internal.WriteString(out, " ")
			}
			internal.WriteString(out, strconv.FormatUint(count, 10))
		}
		internal.WriteString(out, "\n")
	}
}

// StatsHeader is the column header line of the per-sequence stats
// table.
const StatsHeader = "seq_name coverage gc% seq_length non_zero_windows percent_covered"

// WriteStats writes the per-sequence stat rows of a batch, in the
// record order of the batch.
func WriteStats(out *bufio.Writer, records []fasta.Record, results []Result) {
	for i, record := range records {
		result := results[i]
		fmt.Fprintf(out, "%v %v %v %v %v %v\n",
			record.Name,
			strconv.FormatFloat(result.Coverage, 'g', -1, 64),
			strconv.FormatFloat(result.GC, 'g', -1, 64),
			result.Length,
			result.NonZeroWindows,
			strconv.FormatFloat(result.PercentCovered(), 'g', -1, 64))
	}
}

// WriteContaminationMatrix writes the metadata header block and the
// raw body of the final merged matrix.
func WriteContaminationMatrix(out *bufio.Writer, seqFile, countsSource string, matrix *Matrix) {
	fmt.Fprintln(out, KeyTitle+"Contamination Plot for "+seqFile+" and "+countsSource)
	fmt.Fprintln(out, KeyXLabel+"GC%")
	fmt.Fprintln(out, KeyYLabel+"Average K-mer Coverage")
	fmt.Fprintln(out, KeyZLabel+"Base Count per bin")
	fmt.Fprintln(out, KeyNbColumns+strconv.Itoa(matrix.cvgBins))
	fmt.Fprintln(out, KeyNbRows+strconv.Itoa(matrix.gcBins))
	fmt.Fprintln(out, KeyMaxVal+strconv.FormatUint(matrix.Max(), 10))
	fmt.Fprintln(out, KeyTranspose+"0")
	fmt.Fprintln(out, MetaEnd)
	matrix.Print(out)
}
