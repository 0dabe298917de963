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
	"log"
	"math"
	"strconv"

	"github.com/exascience/pargo/parallel"

	"github.com/kmertools/seqcov/internal"
)

// A Matrix is a dense 2-D histogram of base counts binned by
// (GC fraction, coverage), stored row-major with gcBins rows of
// cvgBins cells each.
type Matrix struct {
	gcBins, cvgBins int
	cells           []uint64
}

// NewMatrix returns a zeroed gcBins x cvgBins matrix.
func NewMatrix(gcBins, cvgBins int) *Matrix {
	return &Matrix{
		gcBins:  gcBins,
		cvgBins: cvgBins,
		cells:   make([]uint64, gcBins*cvgBins),
	}
}

// Cell returns the accumulated base count of cell (gcBin, cvgBin).
func (matrix *Matrix) Cell(gcBin, cvgBin int) uint64 {
	return matrix.cells[gcBin*matrix.cvgBins+cvgBin]
}

// Sum returns the total base count accumulated over all cells.
func (matrix *Matrix) Sum() (sum uint64) {
	for _, cell := range matrix.cells {
		sum += cell
	}
	return sum
}

// Max scans for the largest cell value, for the report metadata.
func (matrix *Matrix) Max() uint64 {
	return parallel.RangeReduce(0, len(matrix.cells), 0,
		func(low, high int) interface{} {
			var max uint64
			for i := low; i < high; i++ {
				if cell := matrix.cells[i]; cell > max {
					max = cell
				}
			}
			return max
		},
		func(x, y interface{}) interface{} {
			if x.(uint64) > y.(uint64) {
				return x
			}
			return y
		}).(uint64)
}

// Print writes the raw matrix body: gcBins lines of cvgBins
// space-separated cell values.
func (matrix *Matrix) Print(out *bufio.Writer) {
	for x := 0; x < matrix.gcBins; x++ {
		row := matrix.cells[x*matrix.cvgBins : (x+1)*matrix.cvgBins]
		for y, cell := range row {
			if y > 0 {
				internal.WriteString(out, " ")
			}
			internal.WriteString(out, strconv.FormatUint(cell, 10))
		}
		internal.WriteString(out, "\n")
	}
}

// A ThreadedMatrix holds one matrix per worker. Each worker matrix is
// exclusively written by its worker for the whole run, so no locking
// is needed; Merge sums them into the final matrix once, after all
// batches have been processed.
type ThreadedMatrix struct {
	gcBins, cvgBins int
	cvgLogscale     bool
	workers         []*Matrix
	merged          bool
}

// NewThreadedMatrix returns a ThreadedMatrix with threads worker
// matrices of gcBins x cvgBins cells.
func NewThreadedMatrix(gcBins, cvgBins, threads int, cvgLogscale bool) *ThreadedMatrix {
	if gcBins < 1 || cvgBins < 1 || threads < 1 {
		log.Panicf("invalid matrix configuration: %v gc bins, %v cvg bins, %v threads", gcBins, cvgBins, threads)
	}
	workers := make([]*Matrix, threads)
	for w := range workers {
		workers[w] = NewMatrix(gcBins, cvgBins)
	}
	return &ThreadedMatrix{
		gcBins:      gcBins,
		cvgBins:     cvgBins,
		cvgLogscale: cvgLogscale,
		workers:     workers,
	}
}

// Inc adds weight (a sequence's base length) to the cell that the
// given GC fraction and coverage fall into, in the worker's private
// matrix.
//
// The GC bin is floor(gcFraction*gcBins) clamped into [0, gcBins-1].
// The coverage axis is either compressed by 0.1, or, in logscale
// mode, scaled as log10(coverage)*cvgBins/5 with 5 the assumed
// maximum log coverage; a non-finite or negative scaled value (from
// log10 of zero coverage) clamps to bin 0, and values beyond the last
// bin cap at cvgBins-1.
func (matrix *ThreadedMatrix) Inc(worker int, gcFraction, coverage float64, weight uint64) {
	x := int(gcFraction * float64(matrix.gcBins))
	if x < 0 {
		x = 0
	} else if x >= matrix.gcBins {
		x = matrix.gcBins - 1
	}
	var compressed float64
	if matrix.cvgLogscale {
		compressed = math.Log10(coverage) * (float64(matrix.cvgBins) / 5.0)
	} else {
		compressed = coverage * 0.1
	}
	y := 0
	if compressed > 0 && !math.IsNaN(compressed) {
		y = int(compressed)
	}
	if y >= matrix.cvgBins {
		y = matrix.cvgBins - 1
	}
	cells := matrix.workers[worker].cells
	cells[x*matrix.cvgBins+y] += weight
}

// Merge sums the worker matrices elementwise into the final matrix.
// It must be called exactly once, after all batches of the run have
// been processed.
func (matrix *ThreadedMatrix) Merge() *Matrix {
	if matrix.merged {
		log.Panic("contamination matrix merged more than once")
	}
	matrix.merged = true
	final := NewMatrix(matrix.gcBins, matrix.cvgBins)
	parallel.Range(0, len(final.cells), 0, func(low, high int) {
		for i := low; i < high; i++ {
			var sum uint64
			for _, worker := range matrix.workers {
				sum += worker.cells[i]
			}
			final.cells[i] = sum
		}
	})
	return final
}
