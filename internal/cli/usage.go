// internal/cli/usage.go
package cli

import (
	"fmt"
	"io"

	"lastzrun/internal/version"
)

// PrintUsage writes the sectioned help text.
func PrintUsage(out io.Writer, name string, groups []Group) {
	fmt.Fprintf(out, "%s - split a lastz alignment across reference sequences and run it in parallel\n\n", name)
	fmt.Fprintln(out, "License: MIT")
	fmt.Fprintf(out, "Version: %s\n\n", version.Version)

	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s --reference hg18.2bit --query reads.fa --preset yasra95short --output out.sam -t 8\n", name)
	fmt.Fprintf(out, "  %s --ref-source history --reference ref.fa --query reads.fa --source-select explicit --format tabular --output hits.tab\n", name)

	for _, g := range groups {
		fmt.Fprintf(out, "\n%s:\n", g.Title)
		fmt.Fprint(out, g.Flags.FlagUsages())
	}
	fmt.Fprintln(out, "\nEvery flag can also be set as LASTZRUN_<FLAG> (dashes become underscores) or in the config file.")
	fmt.Fprintln(out, "[*] required")
}
