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
	"bufio"
	"encoding/binary"
	"log"
	"os"
	"sort"

	psort "github.com/exascience/pargo/sort"

	"github.com/kmertools/seqcov/internal"

	"golang.org/x/sys/unix"
)

// KciMagic is the magic byte sequence that every .kci file starts with.
var KciMagic = []byte{0x5E, 0x9C, 0x0F, 0x01} // 5E9C0F01 => SEQCOF1

// .kci layout: magic, k (1 byte), canonical flag (1 byte), entry
// count (8 bytes little-endian), then entries sorted by k-mer, each a
// little-endian (k-mer, count) pair of uint64s.
const (
	kciHeaderSize = 14
	kciEntrySize  = 16
)

type kciEntry struct {
	mer, count uint64
}

type stableEntrySorter []kciEntry

func (s stableEntrySorter) SequentialSort(i, j int) {
	entries := s[i:j]
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].mer < entries[j].mer
	})
}

func (s stableEntrySorter) NewTemp() psort.StableSorter {
	return stableEntrySorter(make([]kciEntry, len(s)))
}

func (s stableEntrySorter) Len() int {
	return len(s)
}

func (s stableEntrySorter) Less(i, j int) bool {
	return s[i].mer < s[j].mer
}

func (s stableEntrySorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(stableEntrySorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// WriteIndexFile serializes a CountIndex to a .kci file, with the
// entries sorted by encoded k-mer so that an mmapped reader can
// resolve lookups by binary search.
func WriteIndexFile(index *CountIndex, filename string) {
	entries := make([]kciEntry, 0, index.Len())
	for _, shard := range index.shards {
		for mer, count := range shard {
			entries = append(entries, kciEntry{mer: mer, count: count})
		}
	}
	psort.StableSort(stableEntrySorter(entries))
	file := internal.FileCreate(filename)
	defer internal.Close(file)
	out := bufio.NewWriter(file)
	internal.Write(out, KciMagic)
	header := make([]byte, kciHeaderSize-len(KciMagic))
	header[0] = byte(index.k)
	if index.canonical {
		header[1] = 1
	}
	binary.LittleEndian.PutUint64(header[2:], uint64(len(entries)))
	internal.Write(out, header)
	entry := make([]byte, kciEntrySize)
	for _, e := range entries {
		binary.LittleEndian.PutUint64(entry, e.mer)
		binary.LittleEndian.PutUint64(entry[8:], e.count)
		internal.Write(out, entry)
	}
	internal.Flush(out)
}

// A MappedIndex is a read-only k-mer count index backed by an
// mmapped .kci file. Lookups are resolved by binary search over the
// sorted entries and are safe for concurrent use.
type MappedIndex struct {
	k         int
	canonical bool
	n         int
	data      []byte
	file      *os.File
}

// OpenIndexFile mmaps a .kci file.
func OpenIndexFile(filename string) *MappedIndex {
	file := internal.FileOpen(filename)
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		log.Panic(err)
	}
	if stat.Size() < kciHeaderSize {
		_ = file.Close()
		log.Panicf("%v is not a .kci file - truncated header", filename)
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		log.Panic(err)
	}
	for i, b := range KciMagic {
		if data[i] != b {
			_ = unix.Munmap(data)
			_ = file.Close()
			log.Panicf("%v is not a .kci file - invalid magic byte sequence", filename)
		}
	}
	k := int(data[len(KciMagic)])
	canonical := data[len(KciMagic)+1] != 0
	n := int(binary.LittleEndian.Uint64(data[len(KciMagic)+2 : kciHeaderSize]))
	if k < 1 || k > MaxK {
		_ = unix.Munmap(data)
		_ = file.Close()
		log.Panicf("invalid k-mer length %v in .kci file %v", k, filename)
	}
	if int(stat.Size()) < kciHeaderSize+n*kciEntrySize {
		_ = unix.Munmap(data)
		_ = file.Close()
		log.Panicf("truncated .kci file %v", filename)
	}
	return &MappedIndex{k: k, canonical: canonical, n: n, data: data, file: file}
}

func (index *MappedIndex) entry(i int) (mer, count uint64) {
	offset := kciHeaderSize + i*kciEntrySize
	return binary.LittleEndian.Uint64(index.data[offset:]), binary.LittleEndian.Uint64(index.data[offset+8:])
}

// Lookup returns the count of an encoded k-mer, 0 if absent.
func (index *MappedIndex) Lookup(mer uint64) uint64 {
	i := sort.Search(index.n, func(i int) bool {
		entry, _ := index.entry(i)
		return entry >= mer
	})
	if i < index.n {
		if entry, count := index.entry(i); entry == mer {
			return count
		}
	}
	return 0
}

// K returns the k-mer length of the index.
func (index *MappedIndex) K() int {
	return index.k
}

// Canonical reports whether the index counts canonical k-mers.
func (index *MappedIndex) Canonical() bool {
	return index.canonical
}

// Len returns the number of distinct k-mers in the index.
func (index *MappedIndex) Len() int {
	return index.n
}

// Close unmaps and closes the .kci file.
func (index *MappedIndex) Close() {
	err := unix.Munmap(index.data)
	index.data = nil
	if nerr := index.file.Close(); err == nil {
		err = nerr
	}
	index.file = nil
	if err != nil {
		log.Panic(err)
	}
}
