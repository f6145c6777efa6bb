// Command tkeyfido-harness is a host-side development tool: it loads a
// directory of scenario transcripts (internal/scenario) and reports
// whether each one's expectations held, by driving a freshly constructed
// in-process simulated device for each scenario.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"tkeyfido/internal/scenario"
)

func main() {
	dir := flag.String("dir", "internal/scenario/testdata", "directory of scenario YAML transcripts")
	flag.Parse()

	failed, err := runAll(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tkeyfido-harness:", err)
		os.Exit(1)
	}
	if failed {
		os.Exit(1)
	}
}

func runAll(dir string) (bool, error) {
	paths, err := scenarioPaths(dir)
	if err != nil {
		return false, err
	}

	anyFailed := false
	for _, path := range paths {
		doc, err := scenario.LoadDocument(path)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", filepath.Base(path), err)
			anyFailed = true
			continue
		}

		outcome, err := scenario.Evaluate(doc)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", doc.Name, err)
			anyFailed = true
			continue
		}

		if outcome.Passed() {
			fmt.Printf("PASS %s\n", doc.Name)
			continue
		}

		anyFailed = true
		fmt.Printf("FAIL %s\n", doc.Name)
		for _, f := range outcome.Failures {
			fmt.Printf("     %s\n", f)
		}
	}

	return anyFailed, nil
}

func scenarioPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
