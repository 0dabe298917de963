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

// Package fasta reads FASTA and FASTQ files in bounded-size batches
// of records, so that peak memory stays proportional to one batch
// regardless of the total input size.
package fasta

import (
	"bufio"
	"compress/gzip"
	"log"
	"os"
)

// A Record is a single named sequence read from a FASTA/FASTQ file.
// Records are immutable once read and owned by the batch that
// returned them.
type Record struct {
	Name string
	Seq  []byte
}

// A Reader reads successive batches of records from a FASTA or FASTQ
// file, plain or gzip-compressed.
type Reader struct {
	scanner  *bufio.Scanner
	closers  []func()
	filename string
	fastq    bool
	started  bool
	open     bool
	name     string
}

const (
	scanBufferSize  = 64 * 1024
	maxSequenceLine = 512 * 1024 * 1024
)

func nameFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	return string(b[i:j])
}

// Open opens a sequence file for batched reading. The format is
// sniffed from the content: a gzip magic number selects transparent
// decompression, and the first record marker selects FASTA ('>') or
// FASTQ ('@').
func Open(filename string) *Reader {
	file, err := os.Open(filename)
	if err != nil {
		log.Panic(err)
	}
	reader := &Reader{filename: filename}
	reader.closers = append(reader.closers, func() {
		if err := file.Close(); err != nil {
			log.Panic(err)
		}
	})
	br := bufio.NewReader(file)
	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			log.Panic(err)
		}
		reader.closers = append(reader.closers, func() {
			if err := gz.Close(); err != nil {
				log.Panic(err)
			}
		})
		br = bufio.NewReader(gz)
	}
	first, err := br.Peek(1)
	if err != nil {
		log.Panicf("empty sequence file %v", filename)
	}
	switch first[0] {
	case '>':
		reader.fastq = false
	case '@':
		reader.fastq = true
	default:
		log.Panicf("invalid sequence file %v - missing first header", filename)
	}
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, scanBufferSize), maxSequenceLine)
	reader.scanner = scanner
	return reader
}

// ReadBatch returns the next batch of at most max records, in file
// order. It returns an empty slice when the file is exhausted. The
// returned records are freshly allocated for every batch.
func (reader *Reader) ReadBatch(max int) []Record {
	if reader.fastq {
		return reader.readFastqBatch(max)
	}
	return reader.readFastaBatch(max)
}

func (reader *Reader) readFastaBatch(max int) (records []Record) {
	var seq []byte
	for reader.scanner.Scan() {
		b := reader.scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		if b[0] == '>' {
			if reader.open {
				records = append(records, Record{Name: reader.name, Seq: seq})
				seq = nil
			}
			reader.name = nameFromHeader(b)
			reader.started = true
			reader.open = true
			if len(records) == max {
				return records
			}
		} else {
			if !reader.started {
				log.Panicf("invalid fasta file %v - missing first header", reader.filename)
			}
			seq = append(seq, b...)
		}
	}
	if err := reader.scanner.Err(); err != nil {
		log.Panic(err)
	}
	if reader.open {
		records = append(records, Record{Name: reader.name, Seq: seq})
		reader.open = false
	}
	return records
}

func (reader *Reader) readFastqBatch(max int) (records []Record) {
	for len(records) < max && reader.scanner.Scan() {
		b := reader.scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		if b[0] != '@' {
			log.Panicf("invalid fastq file %v - missing record header", reader.filename)
		}
		name := nameFromHeader(b)
		if !reader.scanner.Scan() {
			log.Panicf("invalid fastq file %v - truncated record %v", reader.filename, name)
		}
		seq := append([]byte(nil), reader.scanner.Bytes()...)
		if !reader.scanner.Scan() || len(reader.scanner.Bytes()) == 0 || reader.scanner.Bytes()[0] != '+' {
			log.Panicf("invalid fastq file %v - missing separator in record %v", reader.filename, name)
		}
		if !reader.scanner.Scan() {
			log.Panicf("invalid fastq file %v - missing qualities in record %v", reader.filename, name)
		}
		records = append(records, Record{Name: name, Seq: seq})
	}
	if err := reader.scanner.Err(); err != nil {
		log.Panic(err)
	}
	return records
}

// Close closes the underlying file.
func (reader *Reader) Close() {
	for i := len(reader.closers) - 1; i >= 0; i-- {
		reader.closers[i]()
	}
	reader.closers = nil
}
