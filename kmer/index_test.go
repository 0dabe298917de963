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
	"io/ioutil"
	"path/filepath"
	"testing"
)

func writeTestFasta(t *testing.T, contents string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "test.fasta")
	if err := ioutil.WriteFile(filename, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	return filename
}

func mustEncode(t *testing.T, window string) uint64 {
	t.Helper()
	mer, ok := Encode([]byte(window))
	if !ok {
		t.Fatal("cannot encode", window)
	}
	return mer
}

func TestCount(t *testing.T) {
	filename := writeTestFasta(t, ">seq1\nACGTACGT\n")
	index := Count([]string{filename}, 3, false, 3)
	if index.K() != 3 || index.Canonical() {
		t.Error("Count index parameters failed")
	}
	expected := map[string]uint64{"ACG": 2, "CGT": 2, "GTA": 1, "TAC": 1}
	for window, count := range expected {
		if index.Lookup(mustEncode(t, window)) != count {
			t.Error("Count lookup failed for", window)
		}
	}
	if index.Len() != len(expected) {
		t.Error("Count Len failed")
	}
	if index.Lookup(mustEncode(t, "AAA")) != 0 {
		t.Error("Count lookup of an absent k-mer failed")
	}
}

func TestCountCanonical(t *testing.T) {
	filename := writeTestFasta(t, ">seq1\nACGTACGT\n")
	index := Count([]string{filename}, 3, true, 2)
	if !index.Canonical() {
		t.Error("Count canonical flag failed")
	}
	// ACG/CGT are reverse complements of each other, as are GTA/TAC.
	if index.Lookup(Canonical(mustEncode(t, "ACG"), 3)) != 4 {
		t.Error("Count canonical merge failed for ACG")
	}
	if index.Lookup(Canonical(mustEncode(t, "GTA"), 3)) != 2 {
		t.Error("Count canonical merge failed for GTA")
	}
	if index.Len() != 2 {
		t.Error("Count canonical Len failed")
	}
}

func TestCountMultipleFiles(t *testing.T) {
	filename := writeTestFasta(t, ">seq1\nACGTACGT\n>seq2\nNNACGNN\n")
	index := Count([]string{filename, filename}, 3, false, 4)
	if index.Lookup(mustEncode(t, "ACG")) != 6 {
		t.Error("Count over multiple files failed")
	}
}

func TestIndexFile(t *testing.T) {
	filename := writeTestFasta(t, ">seq1\nACGTACGT\n>seq2\nGGGGG\n")
	index := Count([]string{filename}, 3, false, 2)
	indexFile := filepath.Join(t.TempDir(), "test.kci")
	WriteIndexFile(index, indexFile)
	mapped := OpenIndexFile(indexFile)
	defer mapped.Close()
	if mapped.K() != index.K() || mapped.Canonical() != index.Canonical() || mapped.Len() != index.Len() {
		t.Error("mapped index parameters failed")
	}
	for _, window := range []string{"ACG", "CGT", "GTA", "TAC", "GGG", "AAA", "TTT"} {
		mer := mustEncode(t, window)
		if mapped.Lookup(mer) != index.Lookup(mer) {
			t.Error("mapped index lookup failed for", window)
		}
	}
}
