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

import "testing"

func TestEncode(t *testing.T) {
	mer, ok := Encode([]byte("ACGT"))
	if !ok || mer != 27 {
		t.Error("Encode ACGT failed")
	}
	lower, ok := Encode([]byte("acgt"))
	if !ok || lower != mer {
		t.Error("Encode lower case failed")
	}
	if _, ok := Encode([]byte("ACGN")); ok {
		t.Error("Encode did not reject ambiguous base")
	}
	if _, ok := Encode([]byte("ACRT")); ok {
		t.Error("Encode did not reject IUPAC code")
	}
}

func TestDecode(t *testing.T) {
	for _, window := range []string{"A", "ACGT", "TTTTT", "GATTACA"} {
		mer, ok := Encode([]byte(window))
		if !ok || Decode(mer, len(window)) != window {
			t.Error("Decode roundtrip failed for", window)
		}
	}
}

func TestEncodeOrder(t *testing.T) {
	// Numeric order of encoded k-mers is lexicographic order of the
	// base strings.
	windows := []string{"AAT", "ACG", "CGT", "GTA", "TAC"}
	var previous uint64
	for i, window := range windows {
		mer, _ := Encode([]byte(window))
		if i > 0 && mer <= previous {
			t.Error("Encode order failed at", window)
		}
		previous = mer
	}
}

func TestReverseComplement(t *testing.T) {
	aaaa, _ := Encode([]byte("AAAA"))
	tttt, _ := Encode([]byte("TTTT"))
	if ReverseComplement(aaaa, 4) != tttt {
		t.Error("ReverseComplement AAAA failed")
	}
	acgt, _ := Encode([]byte("ACGT"))
	if ReverseComplement(acgt, 4) != acgt {
		t.Error("ReverseComplement of a palindrome failed")
	}
	gat, _ := Encode([]byte("GAT"))
	atc, _ := Encode([]byte("ATC"))
	if ReverseComplement(gat, 3) != atc {
		t.Error("ReverseComplement GAT failed")
	}
	if ReverseComplement(ReverseComplement(gat, 3), 3) != gat {
		t.Error("ReverseComplement involution failed")
	}
}

func TestCanonical(t *testing.T) {
	aaaa, _ := Encode([]byte("AAAA"))
	tttt, _ := Encode([]byte("TTTT"))
	if Canonical(tttt, 4) != aaaa {
		t.Error("Canonical TTTT failed")
	}
	if Canonical(aaaa, 4) != aaaa {
		t.Error("Canonical AAAA failed")
	}
	gta, _ := Encode([]byte("GTA"))
	tac, _ := Encode([]byte("TAC"))
	if Canonical(gta, 3) != Canonical(tac, 3) {
		t.Error("Canonical of a k-mer and its reverse complement differ")
	}
}

func TestEachMer(t *testing.T) {
	var mers []uint64
	EachMer([]byte("ACNGT"), 2, false, func(mer uint64) {
		mers = append(mers, mer)
	})
	ac, _ := Encode([]byte("AC"))
	gt, _ := Encode([]byte("GT"))
	if len(mers) != 2 || mers[0] != ac || mers[1] != gt {
		t.Error("EachMer did not skip ambiguous windows")
	}
	mers = nil
	EachMer([]byte("AC"), 3, false, func(mer uint64) {
		mers = append(mers, mer)
	})
	if len(mers) != 0 {
		t.Error("EachMer on a too short sequence failed")
	}
}

func TestMask(t *testing.T) {
	if Mask(3) != 0x3F {
		t.Error("Mask 3 failed")
	}
	if Mask(MaxK) != ^uint64(0)>>2 {
		t.Error("Mask MaxK failed")
	}
}

func BenchmarkEachMer(b *testing.B) {
	seq := make([]byte, 10000)
	for i := range seq {
		seq[i] = "ACGT"[i%4]
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var mers int
		EachMer(seq, 27, true, func(mer uint64) {
			mers++
		})
	}
}
