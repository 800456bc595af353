package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/reference"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

func printValidationReport(r *validation.Report) {
	if r == nil {
		fmt.Println("No validation report.")
		return
	}

	sections := []struct {
		title   string
		results []validation.Result
		detail  bool
	}{
		{"ERRORS", r.Errors, true},
		{"WARNINGS", r.Warnings, true},
		{"INFO", r.Info, false},
	}
	for _, sec := range sections {
		if len(sec.results) == 0 {
			continue
		}
		fmt.Printf("%s (%d):\n", sec.title, len(sec.results))
		for _, res := range sec.results {
			fmt.Printf("  [%s] %s\n", res.Level, res.Message)
			if sec.detail {
				printResultDetail(res)
			}
		}
		fmt.Println()
	}

	verdict := "VALID"
	if !r.Valid {
		verdict = "INVALID"
	}
	fmt.Printf("Result: %s (%s)\n", verdict, r.Summary)
}

func printResultDetail(res validation.Result) {
	if res.Subject != "" && res.ActualValue != nil {
		fmt.Printf("    -> %s = %v\n", res.Subject, res.ActualValue)
	}
	if res.Expected != "" {
		fmt.Printf("    expected: %s\n", res.Expected)
	}
	if res.ConflictWith != "" {
		fmt.Printf("    conflicts with: %s\n", res.ConflictWith)
	}
	for _, s := range res.Suggestions {
		fmt.Printf("    * %s\n", s)
	}
}

func printMetadata(l *facility.Layout) {
	md := l.Metadata
	fmt.Println()
	fmt.Println("Layout Summary")
	fmt.Println("==============")
	fmt.Printf("  Rooms:             %d\n", len(l.Shapes))
	fmt.Printf("  Doors:             %d\n", len(l.DoorConnections))
	fmt.Printf("  Total area:        %.1f m²\n", md.TotalArea)
	fmt.Printf("  Compliance score:  %d/100\n", md.ComplianceScore)

	if len(md.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("Suggestions")
		fmt.Println("-----------")
		for _, s := range md.Suggestions {
			fmt.Printf("  * %s\n", s)
		}
	}
	if md.Rationale != "" {
		fmt.Println()
		fmt.Println(md.Rationale)
	}
}

func printReferenceTable(w io.Writer, records []reference.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tCLASS\tSIZE (m)\tAREA (m²)\tSCALING\tALIASES")
	for _, r := range records {
		class := "-"
		if r.Class != nil {
			class = string(*r.Class)
		}
		scaling := "-"
		if r.Scaling.Basis != "" {
			scaling = r.Scaling.Basis
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%gx%g\t%g\t%s\t%s\n",
			r.Name, r.Category, class, r.Width, r.Height, r.Area(), scaling, strings.Join(r.Aliases, ", "))
	}
	tw.Flush()
}
