// Command pulsepipe runs the pulse shape discrimination pipeline described
// by a JSON configuration file.
//
// Usage:
//
//	pulsepipe -config psd.json [flags]
//
// Examples:
//
//	pulsepipe -config psd.json
//	pulsepipe -config psd.json -steps load,filter,characteristic,discriminate,histogram
//	pulsepipe -config psd.json -workers 8 -v
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/cwbudde/algo-psd/histogram"
	"github.com/cwbudde/algo-psd/internal/logging"
	"github.com/cwbudde/algo-psd/pipeline"
)

func main() {
	configFile := flag.String("config", "", "configuration file path (JSON)")
	steps := flag.String("steps", "", "comma separated steps to run, overriding the configuration")
	workers := flag.Int("workers", 0, "number of processing workers, overriding the configuration")
	verbose := flag.Bool("v", false, "print the configuration and debug messages")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pulsepipe -config file [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Processes detector pulses and discriminates two pulse classes by shape.\n")
		fmt.Fprintf(os.Stderr, "Steps: process, load, filter, characteristic, discriminate, histogram.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *configFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := pipeline.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading configuration file:", err)
		os.Exit(1)
	}

	if *steps != "" {
		s, err := parseSteps(*steps)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg.Steps = s
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *verbose && cfg.Verbosity == 0 {
		cfg.Verbosity = 1
	}

	log := logging.New(os.Stderr, cfg.Verbosity)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner, err := pipeline.NewRunner(ctx, cfg, log, histogram.TextPlotter{W: os.Stdout})
	if err != nil {
		log.Error(err.Error(), "module", "main")
		os.Exit(1)
	}
	defer runner.Close()

	if _, err := runner.Run(ctx); err != nil {
		log.Error(err.Error(), "module", "main")
		runner.Close()
		os.Exit(1)
	}
}

func parseSteps(list string) (pipeline.Steps, error) {
	var s pipeline.Steps
	for _, name := range strings.Split(list, ",") {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "process":
			s.Process = true
		case "load":
			s.Load = true
		case "filter":
			s.Filter = true
		case "characteristic":
			s.Characteristic = true
		case "discriminate":
			s.Discriminate = true
		case "histogram":
			s.Histogram = true
		case "":
		default:
			return s, fmt.Errorf("unknown step %q", name)
		}
	}

	return s, nil
}
