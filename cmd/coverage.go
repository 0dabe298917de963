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

	"github.com/google/uuid"

	"github.com/kmertools/seqcov/kmer"
	"github.com/kmertools/seqcov/sect"
)

// CoverageHelp is the help string for this command.
const CoverageHelp = "coverage parameters:\n" +
	"seqcov coverage sequence-file counts-input\n" +
	"[--output-prefix name]\n" +
	"[--gc-bins nr]\n" +
	"[--cvg-bins nr]\n" +
	"[--cvg-logscale]\n" +
	"[--mer-len nr]\n" +
	"[--canonical]\n" +
	"[--mean]\n" +
	"[--no-count-stats]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n" +
	"\n" +
	"counts-input is either a .kci k-mer count index, or a\n" +
	"comma-separated list of sequence files to count k-mers from.\n"

// Coverage implements the seqcov coverage command.
//
// It estimates coverage levels for a collection of sequences from
// k-mer counts, producing a fasta-style file of per-window coverage
// counts, a table with the coverage score and GC of each sequence in
// the order of the original sequence file, and a contamination
// matrix binning total base counts by (GC, coverage).
func Coverage() error {
	var (
		outputPrefix     string
		gcBins, cvgBins  int
		cvgLogscale      bool
		merLen           int
		canonical, mean  bool
		noCountStats     bool
		nrOfThreads      int
		timed            bool
		profile, logPath string
	)

	var flags flag.FlagSet
	flags.StringVar(&outputPrefix, "output-prefix", "seqcov", "path prefix for the files generated by this command")
	flags.IntVar(&gcBins, "gc-bins", sect.DefaultGcBins, "number of gc bins in the contamination matrix")
	flags.IntVar(&cvgBins, "cvg-bins", sect.DefaultCvgBins, "number of coverage bins in the contamination matrix")
	flags.BoolVar(&cvgLogscale, "cvg-logscale", false, "compress coverage scores into logscale when binning; otherwise they are compressed by a factor of 0.1")
	flags.IntVar(&merLen, "mer-len", sect.DefaultMerLen, "k-mer length to use when counting k-mers from sequence files")
	flags.BoolVar(&canonical, "canonical", false, "count k-mers for both strands; must match the setting the counts input was produced with")
	flags.BoolVar(&mean, "mean", false, "use the mean rather than the median k-mer frequency for the coverage score")
	flags.BoolVar(&noCountStats, "no-count-stats", false, "do not output the per-window counts file; the output can get very large for read files")
	flags.IntVar(&nrOfThreads, "nr-of-threads", runtime.NumCPU(), "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a profile to the specified file")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(flags, 4, CoverageHelp)

	seqFile := getFilename(os.Args[2], CoverageHelp)
	countsInput := getFilename(os.Args[3], CoverageHelp)
	countsFiles := strings.Split(countsInput, ",")

	ok := checkExist("", seqFile)
	for _, countsFile := range countsFiles {
		ok = checkExist("", countsFile) && ok
	}
	ok = checkCreate("--output-prefix", outputPrefix+"_stats.csv") && ok
	if nrOfThreads < 1 {
		log.Printf("Error: Invalid number of threads %v.\n", nrOfThreads)
		ok = false
	}
	if gcBins < 1 || cvgBins < 1 {
		log.Printf("Error: Invalid number of bins %vx%v.\n", gcBins, cvgBins)
		ok = false
	}
	if merLen < 1 || merLen > kmer.MaxK {
		log.Printf("Error: Invalid k-mer length %v, must be between 1 and %v.\n", merLen, kmer.MaxK)
		ok = false
	}
	countKmers := len(countsFiles) > 1 || isSequenceFile(countsFiles[0])
	if countKmers {
		for _, countsFile := range countsFiles {
			if !isSequenceFile(countsFile) {
				log.Printf("Error: Multiple sequence files provided to count k-mers from, but %v does not have a recognised sequence file extension: %v.\n", countsFile, strings.Join(sequenceFileExtensions, ","))
				ok = false
			}
		}
	}
	if !ok {
		os.Exit(1)
	}

	setLogOutput(logPath)

	conf := sect.Conf{
		MerLen:       merLen,
		Canonical:    canonical,
		Threads:      nrOfThreads,
		GcBins:       gcBins,
		CvgBins:      cvgBins,
		CvgLogscale:  cvgLogscale,
		Median:       !mean,
		NoCountStats: noCountStats,
	}

	var index kmer.Index
	countsSource := countsInput
	phase := int64(1)
	if countKmers {
		log.Println("Provided one or more sequence files. Counting k-mers.")
		var counted *kmer.CountIndex
		timedRun(timed, profile, "Counting k-mers.", phase, func() {
			counted = kmer.Count(countsFiles, conf.MerLen, conf.Canonical, conf.Threads)
		})
		phase++
		indexFile := outputPrefix + "-" + uuid.New().String() + ".kci"
		kmer.WriteIndexFile(counted, indexFile)
		log.Println("Wrote k-mer count index to", indexFile)
		index = counted
		countsSource = indexFile
	} else {
		mapped := kmer.OpenIndexFile(countsFiles[0])
		defer mapped.Close()
		if conf.Canonical != mapped.Canonical() {
			log.Printf("Warning: --canonical does not match the counts input %v; using the setting of the index.\n", countsFiles[0])
		}
		conf.MerLen = mapped.K()
		conf.Canonical = mapped.Canonical()
		index = mapped
	}

	timedRun(timed, profile, "Computing coverage.", phase, func() {
		sect.Run(conf, index, seqFile, countsSource, outputPrefix)
	})
	return nil
}
