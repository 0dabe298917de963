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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kmertools/seqcov/kmer"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	seqFile := filepath.Join(dir, "reads.fasta")
	contents := ">s1\nACGTACGT\n>s2\nGGGG\n>s3\nAC\n"
	if err := ioutil.WriteFile(seqFile, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	index := kmer.Count([]string{seqFile}, 3, false, 2)
	conf := Conf{
		MerLen:  3,
		Threads: 2,
		GcBins:  11,
		CvgBins: 11,
		Median:  true,
	}
	prefix := filepath.Join(dir, "out")
	Run(conf, index, seqFile, seqFile, prefix)

	counts, err := ioutil.ReadFile(prefix + "_counts.cvg")
	if err != nil {
		t.Fatal(err)
	}
	if string(counts) != ">s1\n2 2 1 1 2 2\n>s2\n2 2\n>s3\n0\n" {
		t.Error("Run counts output failed:", string(counts))
	}

	stats, err := ioutil.ReadFile(prefix + "_stats.csv")
	if err != nil {
		t.Fatal(err)
	}
	expectedStats := StatsHeader + "\n" +
		"s1 2 0.5 8 6 100\n" +
		"s2 2 1 4 2 100\n" +
		"s3 0 0.5 2 0 0\n"
	if string(stats) != expectedStats {
		t.Error("Run stats output failed:", string(stats))
	}

	matrix, err := ioutil.ReadFile(prefix + "_contamination.mx")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(matrix), "\n")
	// 8 metadata lines, the end marker, 11 matrix rows, and the final
	// newline.
	if len(lines) != 21 {
		t.Fatal("Run matrix line count failed:", len(lines))
	}
	if !strings.HasPrefix(lines[0], KeyTitle) || lines[6] != KeyMaxVal+"10" || lines[8] != MetaEnd {
		t.Error("Run matrix metadata failed")
	}
	// s1 and s3 share GC bin 5, s2 lands in the clamped top GC bin;
	// all three have coverage bin 0.
	if !strings.HasPrefix(lines[9+5], "10 ") || !strings.HasPrefix(lines[9+10], "4 ") {
		t.Error("Run matrix body failed")
	}
}

func TestRunIndexMismatch(t *testing.T) {
	dir := t.TempDir()
	seqFile := filepath.Join(dir, "reads.fasta")
	if err := ioutil.WriteFile(seqFile, []byte(">s1\nACGT\n"), 0666); err != nil {
		t.Fatal(err)
	}
	index := kmer.Count([]string{seqFile}, 3, false, 1)
	conf := Conf{
		MerLen:  2,
		Threads: 1,
		GcBins:  11,
		CvgBins: 11,
		Median:  true,
	}
	defer func() {
		if recover() == nil {
			t.Error("Run did not reject a configuration that disagrees with the index")
		}
	}()
	Run(conf, index, seqFile, seqFile, filepath.Join(dir, "out"))
}

func TestRunNoCountStats(t *testing.T) {
	dir := t.TempDir()
	seqFile := filepath.Join(dir, "reads.fasta")
	if err := ioutil.WriteFile(seqFile, []byte(">s1\nACGT\n"), 0666); err != nil {
		t.Fatal(err)
	}
	index := kmer.Count([]string{seqFile}, 2, false, 1)
	conf := Conf{
		MerLen:       2,
		Threads:      1,
		GcBins:       11,
		CvgBins:      11,
		Median:       true,
		NoCountStats: true,
	}
	prefix := filepath.Join(dir, "out")
	Run(conf, index, seqFile, seqFile, prefix)
	if _, err := os.Stat(prefix + "_counts.cvg"); !os.IsNotExist(err) {
		t.Error("Run wrote a counts file despite NoCountStats")
	}
	if _, err := os.Stat(prefix + "_stats.csv"); err != nil {
		t.Error("Run stats file missing")
	}
	if _, err := os.Stat(prefix + "_contamination.mx"); err != nil {
		t.Error("Run contamination matrix missing")
	}
}
