// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Filter   string        `flag:"filter" desc:"name filter"`
		Verbose  bool          `flag:"verbose,v" desc:"enable verbose output"`
		Count    int           `flag:"count" desc:"number of items"`
		Timeout  time.Duration `flag:"timeout" desc:"subprocess timeout"`
		Untagged string        // no flag tag — should be skipped
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"--filter", "github",
		"-v",
		"--count", "42",
		"--timeout", "30s",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Filter != "github" {
		t.Errorf("Filter = %q, want %q", p.Filter, "github")
	}
	if !p.Verbose {
		t.Error("Verbose = false, want true")
	}
	if p.Count != 42 {
		t.Errorf("Count = %d, want 42", p.Count)
	}
	if p.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", p.Timeout)
	}
	if p.Untagged != "" {
		t.Errorf("Untagged = %q, want empty (should be skipped)", p.Untagged)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Binary  string        `flag:"binary" desc:"vault CLI binary" default:"bw"`
		Timeout time.Duration `flag:"timeout" desc:"timeout" default:"10s"`
		DryRun  bool          `flag:"dry-run" desc:"dry run" default:"true"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Binary != "bw" {
		t.Errorf("Binary = %q, want %q", p.Binary, "bw")
	}
	if p.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", p.Timeout)
	}
	if !p.DryRun {
		t.Error("DryRun = false, want true")
	}
}

func TestBindFlags_EmbeddedStruct(t *testing.T) {
	type common struct {
		Verbose bool `flag:"verbose,v" desc:"verbose output"`
	}
	type params struct {
		common
		Filter string `flag:"filter" desc:"name filter"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"-v", "--filter", "prod"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !p.Verbose {
		t.Error("embedded Verbose = false, want true")
	}
	if p.Filter != "prod" {
		t.Errorf("Filter = %q, want %q", p.Filter, "prod")
	}
}

func TestBindFlags_UnsupportedType(t *testing.T) {
	type params struct {
		Scores map[string]int `flag:"scores" desc:"unsupported"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := BindFlags(&p, flagSet)
	if err == nil {
		t.Fatal("expected error for unsupported field type")
	}
	if !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("error = %q, want mention of unsupported type", err)
	}
}

func TestBindFlags_BadDefault(t *testing.T) {
	type params struct {
		Timeout time.Duration `flag:"timeout" desc:"timeout" default:"not-a-duration"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err == nil {
		t.Fatal("expected error for unparseable default")
	}
}

func TestBindFlags_NotAPointer(t *testing.T) {
	type params struct {
		Filter string `flag:"filter"`
	}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(params{}, flagSet); err == nil {
		t.Fatal("expected error for non-pointer params")
	}
}
