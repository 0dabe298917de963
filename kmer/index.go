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

package kmer

import (
	"log"
	"sync"

	"github.com/exascience/pargo/parallel"

	"github.com/kmertools/seqcov/fasta"
)

// An Index maps encoded k-mers to occurrence counts. Lookups are
// read-only and safe for concurrent use; a k-mer that is not present
// has count 0.
type Index interface {
	Lookup(mer uint64) uint64
	K() int
	Canonical() bool
}

// A CountIndex is an in-memory k-mer count index, sharded over the
// low bits of the encoded k-mer.
type CountIndex struct {
	k         int
	canonical bool
	mask      uint64
	shards    []map[uint64]uint64
}

const countBatchSize = 1024

func shardCount(threads int) int {
	shards := 16
	for shards < threads {
		shards <<= 1
	}
	return shards
}

// Count builds a CountIndex for the k-mers of one or more sequence
// files. If canonical is true, every k-mer is counted under its
// canonical form, merging the counts of both strands.
//
// Records of each batch are assigned to workers by interlaced
// striding; every worker increments only its own shard maps for the
// whole run, and the per-worker maps are merged once at the end.
func Count(filenames []string, k int, canonical bool, threads int) *CountIndex {
	if k < 1 || k > MaxK {
		log.Panicf("invalid k-mer length %v, must be between 1 and %v", k, MaxK)
	}
	if threads < 1 {
		log.Panicf("invalid number of threads %v", threads)
	}
	shards := shardCount(threads)
	mask := uint64(shards - 1)
	workers := make([][]map[uint64]uint64, threads)
	for w := range workers {
		workers[w] = make([]map[uint64]uint64, shards)
		for s := range workers[w] {
			workers[w][s] = make(map[uint64]uint64)
		}
	}
	for _, filename := range filenames {
		reader := fasta.Open(filename)
		for {
			records := reader.ReadBatch(countBatchSize)
			if len(records) == 0 {
				break
			}
			var wait sync.WaitGroup
			for w := 0; w < threads; w++ {
				wait.Add(1)
				go func(worker int) {
					defer wait.Done()
					own := workers[worker]
					for i := worker; i < len(records); i += threads {
						EachMer(records[i].Seq, k, canonical, func(mer uint64) {
							own[mer&mask][mer]++
						})
					}
				}(w)
			}
			wait.Wait()
		}
		reader.Close()
	}
	merged := workers[0]
	parallel.Range(0, shards, threads, func(low, high int) {
		for s := low; s < high; s++ {
			for w := 1; w < threads; w++ {
				for mer, count := range workers[w][s] {
					merged[s][mer] += count
				}
			}
		}
	})
	return &CountIndex{k: k, canonical: canonical, mask: mask, shards: merged}
}

// Lookup returns the count of an encoded k-mer, 0 if absent.
func (index *CountIndex) Lookup(mer uint64) uint64 {
	return index.shards[mer&index.mask][mer]
}

// K returns the k-mer length of the index.
func (index *CountIndex) K() int {
	return index.k
}

// Canonical reports whether the index counts canonical k-mers.
func (index *CountIndex) Canonical() bool {
	return index.canonical
}

// Len returns the number of distinct k-mers in the index.
func (index *CountIndex) Len() (n int) {
	for _, shard := range index.shards {
		n += len(shard)
	}
	return n
}
