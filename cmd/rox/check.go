package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/roxlang/roxscript/rox"
)

const sourceExt = ".rox"

func checkCommand(args []string) error {
	flags := flag.NewFlagSet("check", flag.ContinueOnError)
	flags.SetOutput(new(flagErrorSink))
	if err := flags.Parse(args); err != nil {
		return usagef("rox check: %v", err)
	}

	targets := flags.Args()
	if len(targets) == 0 {
		return usagef("rox check: path required")
	}

	files, err := collectSourceFiles(targets)
	if err != nil {
		return err
	}

	engine := rox.MustNewEngine(rox.Config{})
	results := make([]error, len(files))
	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		group.Go(func() error {
			input, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			_, results[i] = engine.Compile(string(input))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	var failures []error
	for i, err := range results {
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s:\n%v\n", files[i], err)
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("rox check: %d of %d file(s) failed to compile: %w", len(failures), len(files), errors.Join(failures...))
	}
	fmt.Printf("%d file(s) ok\n", len(files))
	return nil
}

// collectSourceFiles expands directories into the .rox files beneath them.
// Files named explicitly are kept whatever their extension.
func collectSourceFiles(targets []string) ([]string, error) {
	seen := make(map[string]struct{})
	files := make([]string, 0)
	addFile := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", target, err)
		}
		if !info.IsDir() {
			addFile(target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() || filepath.Ext(path) != sourceExt {
				return nil
			}
			addFile(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", target, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
