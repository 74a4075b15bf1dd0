// Command runoff computes surface runoff for a delimited rainfall/catchment
// table and writes the results table to stdout or a file. Row-level
// computation failures are skipped and reported on stderr unless -strict is
// set.
//
// Usage:
//
//	go run ./cmd/runoff \
//	  -input storms.csv \
//	  -method "SCS CN Method" \
//	  -output results.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/runmeter/internal/domain"
	"github.com/couchcryptid/runmeter/internal/table"
)

func main() {
	input := flag.String("input", "", "path to the input CSV file")
	method := flag.String("method", domain.LabelSCSCN, `estimation method: "SCS CN Method" or "Strange Method"`)
	output := flag.String("output", "", "path for the results CSV (default stdout)")
	strict := flag.Bool("strict", false, "abort on the first row computation error instead of skipping the row")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*input, *method, *output, *strict); code != 0 {
		os.Exit(code)
	}
}

func run(input, method, output string, strict bool) int {
	model, err := domain.ParseMethodLabel(method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runoff: %v\n", err)
		return 1
	}

	f, err := os.Open(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runoff: %v\n", err)
		return 1
	}
	defer f.Close()

	ds, err := table.Read(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runoff: %v\n", err)
		return 1
	}

	rows, err := domain.Validate(ds, model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runoff: invalid input: %v\n", err)
		return 1
	}

	var results []domain.ResultRow
	var skipped []domain.RowComputationError
	if strict {
		results, err = domain.ComputeStrict(rows, model)
		if err != nil {
			fmt.Fprintf(os.Stderr, "runoff: %v\n", err)
			return 1
		}
	} else {
		res := domain.Compute(rows, model)
		results, skipped = res.Rows, res.Skipped
	}

	out := io.Writer(os.Stdout)
	if output != "" {
		of, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "runoff: %v\n", err)
			return 1
		}
		defer of.Close()
		out = of
	}

	if err := table.WriteResults(out, results); err != nil {
		fmt.Fprintf(os.Stderr, "runoff: write results: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "%d of %d rows computed\n", len(results), len(rows))
	for _, e := range skipped {
		fmt.Fprintf(os.Stderr, "  row %d skipped: %s\n", e.Row, e.Reason)
	}
	return 0
}
