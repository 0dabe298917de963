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
	"sync"

	"github.com/kmertools/seqcov/fasta"
	"github.com/kmertools/seqcov/kmer"
)

// AnalyzeBatch distributes the per-sequence analysis of one batch
// over conf.Threads workers and blocks until all of them are done.
//
// Worker w processes record positions w, w+T, w+2T, and so on.
// Sequence files are frequently sorted by descending length, so this
// interlaced striding spreads long and short sequences evenly over
// the workers, where contiguous blocks would overload the first
// worker. A worker whose first position already exceeds the batch
// has no work and returns immediately.
//
// Each worker writes only the result positions it was assigned and
// only its own matrix, so the workers share no mutable state. The
// returned results are positioned to match the record order of the
// batch, regardless of which worker processed which record.
func AnalyzeBatch(conf Conf, index kmer.Index, records []fasta.Record, matrix *ThreadedMatrix) []Result {
	results := make([]Result, len(records))
	var wait sync.WaitGroup
	for w := 0; w < conf.Threads; w++ {
		wait.Add(1)
		go func(worker int) {
			defer wait.Done()
			for i := worker; i < len(records); i += conf.Threads {
				result := ProfileSequence(conf, index, records[i])
				results[i] = result
				matrix.Inc(worker, result.GC, result.Coverage, uint64(result.Length))
			}
		}(w)
	}
	wait.Wait()
	return results
}
