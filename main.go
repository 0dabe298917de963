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

// seqcov estimates per-sequence k-mer coverage and GC composition for
// FASTA/FASTQ files, and bins the results into a length-weighted
// contamination matrix for detecting contaminant clusters in
// sequencing datasets.
//
// Please see https://github.com/kmertools/seqcov for a documentation
// of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kmertools/seqcov/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: coverage, count")
	fmt.Fprint(os.Stderr, "\n", cmd.CoverageHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.CountHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "coverage":
		err = cmd.Coverage()
	case "count":
		err = cmd.Count()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Printf("Unknown command %v.\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
