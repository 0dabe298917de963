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

// Package kmer implements 2-bit k-mer encoding and k-mer count
// indexes, both in-memory and as mmapped .kci files.
//
// K-mers are packed two bits per base into a uint64, A=0 C=1 G=2 T=3,
// so that the numeric order of encoded k-mers is the lexicographic
// order of their base strings, and the canonical form is simply the
// smaller of a k-mer and its reverse complement.
package kmer

import "log"

// MaxK is the longest supported k-mer length.
const MaxK = 31

var baseTable [256]byte

func init() {
	for i := range baseTable {
		baseTable[i] = 0xFF
	}
	baseTable['A'], baseTable['a'] = 0, 0
	baseTable['C'], baseTable['c'] = 1, 1
	baseTable['G'], baseTable['g'] = 2, 2
	baseTable['T'], baseTable['t'] = 3, 3
}

// BaseBits returns the 2-bit code for an unambiguous base,
// case-insensitive. ok is false for any other byte.
func BaseBits(base byte) (bits uint64, ok bool) {
	b := baseTable[base]
	return uint64(b), b != 0xFF
}

// Mask returns the bit mask covering an encoded k-mer of length k.
func Mask(k int) uint64 {
	return ^uint64(0) >> uint(64-2*k)
}

// Encode packs a window of k bases into a uint64. ok is false if the
// window contains a base outside A/C/G/T (either case).
func Encode(window []byte) (mer uint64, ok bool) {
	if len(window) < 1 || len(window) > MaxK {
		log.Panicf("invalid k-mer length %v", len(window))
	}
	for _, base := range window {
		bits, valid := BaseBits(base)
		if !valid {
			return 0, false
		}
		mer = mer<<2 | bits
	}
	return mer, true
}

// Decode returns the base string of an encoded k-mer of length k.
func Decode(mer uint64, k int) string {
	bases := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		bases[i] = "ACGT"[mer&3]
		mer >>= 2
	}
	return string(bases)
}

// ReverseComplement returns the encoded reverse complement of an
// encoded k-mer of length k. Complementing a 2-bit base is xor 3.
func ReverseComplement(mer uint64, k int) (rc uint64) {
	for i := 0; i < k; i++ {
		rc = rc<<2 | (mer&3 ^ 3)
		mer >>= 2
	}
	return rc
}

// Canonical returns the smaller of an encoded k-mer and its reverse
// complement, which by construction is also the lexicographically
// smaller of the two base strings.
func Canonical(mer uint64, k int) uint64 {
	if rc := ReverseComplement(mer, k); rc < mer {
		return rc
	}
	return mer
}

// EachMer calls f for the encoding of every window of length k in seq
// that consists only of unambiguous bases, optionally canonicalized.
// Windows containing other bases are skipped.
func EachMer(seq []byte, k int, canonical bool, f func(mer uint64)) {
	mask := Mask(k)
	var mer uint64
	run := 0
	for _, base := range seq {
		bits, ok := BaseBits(base)
		if !ok {
			run = 0
			continue
		}
		mer = (mer<<2 | bits) & mask
		if run++; run < k {
			continue
		}
		if canonical {
			f(Canonical(mer, k))
		} else {
			f(mer)
		}
	}
}
