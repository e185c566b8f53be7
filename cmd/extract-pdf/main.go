package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/extract"
)

// Prints the (item code, quantity) pairs found in a purchase order PDF without
// touching Shopify or the database.
// Usage: go run ./cmd/extract-pdf [-raw] "Purchase Order 4500123.pdf"
func main() {
	rawFlag := flag.Bool("raw", false, "Also print the flattened text layer")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/extract-pdf [-raw] <file.pdf>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stat %s: %v\n", path, err)
		os.Exit(1)
	}

	text, err := extract.TextFromPDF(f, info.Size())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read PDF: %v\n", err)
		os.Exit(1)
	}

	if *rawFlag {
		fmt.Println("--- text layer ---")
		fmt.Println(text)
		fmt.Println("------------------")
	}

	if po, ok := extract.PONumberFromFilename(filepath.Base(path)); ok {
		fmt.Printf("PO number (from file name): %s\n\n", po)
	} else {
		fmt.Printf("PO number: not derivable from file name\n\n")
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	res := extract.NewExtractor(logger).Extract(text)

	fmt.Printf("Found %d line item(s):\n", len(res.Pairs))
	for i, p := range res.Pairs {
		code, qty := "<none>", "<none>"
		if p.Code != nil {
			code = *p.Code
		}
		if p.Quantity != nil {
			qty = fmt.Sprintf("%d", *p.Quantity)
		}
		fmt.Printf("  %3d. %-20s %s\n", i+1, code, qty)
	}

	if len(res.Anomalies) > 0 {
		fmt.Printf("\n%d anomaly(ies):\n", len(res.Anomalies))
		for _, a := range res.Anomalies {
			prior := ""
			if a.PriorCode != nil {
				prior = " after " + *a.PriorCode
			}
			fmt.Printf("  - %s at token %d (%q)%s\n", a.Kind, a.Position, a.Token, prior)
		}
	}
}
