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

package cmd

import (
	"flag"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/kmertools/seqcov/kmer"
	"github.com/kmertools/seqcov/sect"
)

// CountHelp is the help string for this command.
const CountHelp = "\ncount parameters:\n" +
	"seqcov count kci-file sequence-files\n" +
	"[--mer-len nr]\n" +
	"[--canonical]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--log-path path]\n" +
	"\n" +
	"sequence-files is a comma-separated list of sequence files.\n"

// Count implements the seqcov count command. It builds a .kci k-mer
// count index from one or more sequence files.
func Count() error {
	var (
		merLen      int
		canonical   bool
		nrOfThreads int
		timed       bool
		logPath     string
	)

	var flags flag.FlagSet
	flags.IntVar(&merLen, "mer-len", sect.DefaultMerLen, "k-mer length")
	flags.BoolVar(&canonical, "canonical", false, "count k-mers for both strands")
	flags.IntVar(&nrOfThreads, "nr-of-threads", runtime.NumCPU(), "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(flags, 4, CountHelp)

	output := getFilename(os.Args[2], CountHelp)
	inputs := strings.Split(getFilename(os.Args[3], CountHelp), ",")

	ok := checkCreate("", output)
	for _, input := range inputs {
		ok = checkExist("", input) && ok
	}
	if merLen < 1 || merLen > kmer.MaxK {
		log.Printf("Error: Invalid k-mer length %v, must be between 1 and %v.\n", merLen, kmer.MaxK)
		ok = false
	}
	if nrOfThreads < 1 {
		log.Printf("Error: Invalid number of threads %v.\n", nrOfThreads)
		ok = false
	}
	if !ok {
		os.Exit(1)
	}

	setLogOutput(logPath)

	timedRun(timed, "", "Counting k-mers.", 1, func() {
		index := kmer.Count(inputs, merLen, canonical, nrOfThreads)
		kmer.WriteIndexFile(index, output)
		log.Println("Wrote", index.Len(), "distinct k-mers to", output)
	})
	return nil
}
