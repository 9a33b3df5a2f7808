// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"kanso/internal/chc"
	"kanso/internal/errors"
	"kanso/internal/ir"
	"kanso/internal/parser"
	"kanso/internal/semantic"
	"kanso/internal/solver"
)

// verifyOptions holds kanso verify's flags, parsed by hand per the rest of
// this CLI's existing argv handling — no flag library is used anywhere
// else in this command, so verify doesn't introduce one either.
type verifyOptions struct {
	path     string
	targets  map[string]bool
	timeout  time.Duration
	cacheDir string
}

func parseVerifyArgs(args []string) (*verifyOptions, error) {
	opts := &verifyOptions{
		targets: map[string]bool{"assert": true, "overflow": true, "underflow": true, "divzero": true, "pop": true},
		timeout: 30 * time.Second,
	}
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--targets="):
			opts.targets = map[string]bool{}
			for _, t := range strings.Split(strings.TrimPrefix(arg, "--targets="), ",") {
				if t != "" {
					opts.targets[t] = true
				}
			}
		case strings.HasPrefix(arg, "--timeout="):
			d, err := time.ParseDuration(strings.TrimPrefix(arg, "--timeout="))
			if err != nil {
				return nil, fmt.Errorf("invalid --timeout: %w", err)
			}
			opts.timeout = d
		case strings.HasPrefix(arg, "--cache-dir="):
			opts.cacheDir = strings.TrimPrefix(arg, "--cache-dir=")
		case strings.HasPrefix(arg, "--"):
			return nil, fmt.Errorf("unknown flag %q", arg)
		default:
			opts.path = arg
		}
	}
	if opts.path == "" {
		return nil, fmt.Errorf("missing <file.ka> argument")
	}
	return opts, nil
}

func runVerify(args []string) {
	opts, err := parseVerifyArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	startTime := time.Now()

	source, err := os.ReadFile(opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		os.Exit(1)
	}

	contract, parseErrors, scannerErrors := parser.ParseSource(opts.path, string(source))
	errorReporter := errors.NewErrorReporter(opts.path, string(source))

	for _, e := range scannerErrors {
		fmt.Print(FormatScanError(opts.path, e, string(source)))
	}
	for _, e := range parseErrors {
		fmt.Print(FormatParseError(opts.path, e, string(source)))
	}
	if contract == nil || len(scannerErrors) > 0 || len(parseErrors) > 0 {
		color.Red("verify aborted: %s failed to parse", opts.path)
		os.Exit(1)
	}

	analyzer := semantic.NewAnalyzer()
	analyzer.Analyze(contract)
	if semErrs := analyzer.GetErrors(); len(semErrs) > 0 {
		for _, e := range semErrs {
			fmt.Print(errorReporter.FormatError(e))
		}
		color.Red("verify aborted: %s failed semantic analysis", opts.path)
		os.Exit(1)
	}

	program := ir.BuildProgram(contract, analyzer.GetContext())

	cache := solver.NewResponseCache()
	if opts.cacheDir != "" {
		// Persisting the cache to opts.cacheDir across invocations is left
		// for the CI-integration follow-up; today the cache only lives for
		// one process's lifetime, matching spec.md §6's description of the
		// cache as in-memory core state rather than a committed artifact.
	}
	driver := solver.NewZ3Driver(cache)

	chcAnalyzer := chc.NewAnalyzer(driver, map[string]bool{})
	findings, err := chcAnalyzer.Analyze(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verification engine error: %v\n", err)
		os.Exit(1)
	}

	findings = filterByTarget(findings, opts.targets)

	duration := time.Since(startTime)
	if len(findings) == 0 {
		color.Green("No violations found in %s (%s)", opts.path, formatDuration(duration))
	} else {
		for _, f := range findings {
			fmt.Println(f.Trace.String())
		}
		color.Red("%d violation(s) found in %s (%s)", len(findings), opts.path, formatDuration(duration))
	}

	if unhandled := chcAnalyzer.UnhandledQueries(); len(unhandled) > 0 {
		color.Yellow("%d quer(ies) could not be discharged and were skipped", len(unhandled))
	}

	if len(findings) > 0 {
		os.Exit(1)
	}
}

func filterByTarget(findings []*chc.Finding, targets map[string]bool) []*chc.Finding {
	if len(targets) == 0 {
		return findings
	}
	var out []*chc.Finding
	for _, f := range findings {
		if targets[targetFlagName(f.ErrorID)] {
			out = append(out, f)
		}
	}
	return out
}

func targetFlagName(errorID int) string {
	switch errorID {
	case errors.VerificationAssert:
		return "assert"
	case errors.VerificationOverflow:
		return "overflow"
	case errors.VerificationUnderflow:
		return "underflow"
	case errors.VerificationDivByZero:
		return "divzero"
	case errors.VerificationPopEmptyArray:
		return "pop"
	default:
		return "other"
	}
}
