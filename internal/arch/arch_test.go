// ./internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

const module = "lastzrun/"

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

// within reports whether dep is path or one of its subpackages.
func within(dep, path string) bool {
	return dep == path || strings.HasPrefix(dep, path+"/")
}

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Dir = "../.."
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	front := []string{
		"lastzrun/internal/app", "lastzrun/internal/appcore", "lastzrun/internal/appshell",
		"lastzrun/internal/cli", "lastzrun/cmd",
	}
	bans := map[string][]string{
		"lastzrun/internal/lastz":     append([]string{"lastzrun/internal/runner", "lastzrun/internal/jobqueue", "lastzrun/internal/output"}, front...),
		"lastzrun/internal/partition": append([]string{"lastzrun/internal/lastz", "lastzrun/internal/runner", "lastzrun/internal/jobqueue"}, front...),
		"lastzrun/internal/jobqueue":  append([]string{"lastzrun/internal/runner", "lastzrun/internal/output"}, front...),
		"lastzrun/internal/runner":    append([]string{"lastzrun/internal/metrics", "lastzrun/internal/output", "lastzrun/internal/partition"}, front...),
		"lastzrun/internal/metrics":   front,
		"lastzrun/internal/output":    front,
		"lastzrun/internal/twobit":    append([]string{"lastzrun/internal/partition", "lastzrun/internal/lastz"}, front...),
		"lastzrun/internal/loc":       append([]string{"lastzrun/internal/partition", "lastzrun/internal/lastz"}, front...),
		"lastzrun/internal/fasta":     append([]string{"lastzrun/internal/partition", "lastzrun/internal/lastz"}, front...),
		"lastzrun/internal/apperr":    {module},
		"lastzrun/internal/logging":   front,
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, module) {
			continue
		}
		imp := p.ImportPath
		for path, forbidden := range bans {
			if !within(imp, path) {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, module) {
					continue
				}
				for _, ban := range forbidden {
					if ban == module || within(dep, ban) {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
