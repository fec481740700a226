package main

import (
	"fmt"
	"os"

	"github.com/fenwick-labs/orgtree/internal/lintreport"
	"github.com/fenwick-labs/orgtree/internal/rules"
	"github.com/fenwick-labs/orgtree/org"
)

func runLint(files []string, configPath string, useTOML bool) error {
	var set *rules.Set
	if _, err := os.Stat(configPath); err == nil {
		if useTOML {
			set, err = rules.LoadTOML(configPath)
		} else {
			set, err = rules.LoadYAML(configPath)
		}
		if err != nil {
			return err
		}
	} else {
		set = &rules.Set{}
	}

	var total int
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		p := org.New().Silent().Parse(raw, path)
		violations, err := set.Check(p)
		if err != nil {
			return err
		}
		lintreport.Print(os.Stdout, path, violations)
		total += len(violations)
	}
	if total > 0 {
		return fmt.Errorf("%d violation(s) found", total)
	}
	return nil
}
