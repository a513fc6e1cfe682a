//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestApplyConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(file, []byte(`threshold: 200
bounds: [25, 40, 50]
metrics: validate,histogram
field: wealth
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	threshold := fs.Uint("threshold", 0, "")
	bounds := fs.String("bounds", "", "")
	metrics := fs.String("metrics", "", "")
	field := fs.String("field", "age", "")

	if err := fs.Parse([]string{"-field", "age"}); err != nil {
		t.Fatal(err)
	}
	if err := applyConfig(fs, file); err != nil {
		t.Fatal(err)
	}
	if *threshold != 200 {
		t.Errorf("threshold: got %d, expected 200", *threshold)
	}
	if *bounds != "25,40,50" {
		t.Errorf("bounds: got %q", *bounds)
	}
	if *metrics != "validate,histogram" {
		t.Errorf("metrics: got %q", *metrics)
	}
	// Command line flags override the configuration.
	if *field != "age" {
		t.Errorf("field: got %q, expected age", *field)
	}
}
