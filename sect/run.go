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

	"github.com/exascience/pargo/parallel"

	"github.com/kmertools/seqcov/fasta"
	"github.com/kmertools/seqcov/internal"
	"github.com/kmertools/seqcov/kmer"
)

// Run processes the whole sequence file in batches of BatchSize
// records and writes the derived output files under outputPrefix:
// the per-window counts (unless suppressed), the per-sequence stats
// table, and, after the single merge, the contamination matrix.
//
// countsSource only names the k-mer count input in the matrix title.
//
// conf.MerLen and conf.Canonical must agree with the index; the
// analysis itself takes both from the index.
func Run(conf Conf, index kmer.Index, seqFile, countsSource, outputPrefix string) {
	if conf.MerLen != index.K() || conf.Canonical != index.Canonical() {
		log.Panicf("run configuration disagrees with the k-mer count index: k-mer length %v vs %v, canonical %v vs %v", conf.MerLen, index.K(), conf.Canonical, index.Canonical())
	}
	reader := fasta.Open(seqFile)
	defer reader.Close()

	matrix := NewThreadedMatrix(conf.GcBins, conf.CvgBins, conf.Threads, conf.CvgLogscale)

	var countsOut *bufio.Writer
	if !conf.NoCountStats {
		countsFile := internal.FileCreate(outputPrefix + "_counts.cvg")
		defer internal.Close(countsFile)
		countsOut = bufio.NewWriter(countsFile)
	}
	statsFile := internal.FileCreate(outputPrefix + "_stats.csv")
	defer internal.Close(statsFile)
	statsOut := bufio.NewWriter(statsFile)
	internal.WriteString(statsOut, StatsHeader+"\n")

	for {
		records := reader.ReadBatch(BatchSize)
		if len(records) == 0 {
			break
		}
		results := AnalyzeBatch(conf, index, records, matrix)
		if countsOut != nil {
			// The two streams are independent, so a batch's counts
			// and stats can be written concurrently.
			parallel.Do(
				func() { WriteCounts(countsOut, records, results) },
				func() { WriteStats(statsOut, records, results) },
			)
		} else {
			WriteStats(statsOut, records, results)
		}
	}

	if countsOut != nil {
		internal.Flush(countsOut)
	}
	internal.Flush(statsOut)

	final := matrix.Merge()
	matrixFile := internal.FileCreate(outputPrefix + "_contamination.mx")
	defer internal.Close(matrixFile)
	matrixOut := bufio.NewWriter(matrixFile)
	WriteContaminationMatrix(matrixOut, seqFile, countsSource, final)
	internal.Flush(matrixOut)
}
