// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1}, // substitution
		{"abc", "ab", 1},  // deletion
		{"ab", "abc", 1},  // insertion
		{"abc", "bac", 2}, // transposition (counted as 2 edits)
		{"kitten", "sitting", 3},
		{"doctor", "docotr", 2},
		{"version", "vrsion", 1},
	}

	for _, test := range tests {
		t.Run(test.a+"→"+test.b, func(t *testing.T) {
			got := levenshtein(test.a, test.b)
			if got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "list"},
		{Name: "doctor"},
		{Name: "version"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"lst", "list"},       // missing letters
		{"docotr", "doctor"},  // transposition
		{"vrsion", "version"}, // missing letter
		{"zzzzzzzzz", ""},     // nothing close
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got := suggestCommand(test.input, commands)
			if got != test.want {
				t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestSuggestFlag(t *testing.T) {
	makeFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flagSet.String("filter", "", "")
		flagSet.String("config", "", "")
		flagSet.BoolP("verbose", "v", false, "")
		flagSet.Bool("dry-run", false, "")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "close typo with double dash",
			args: []string{"--fitler"},
			want: "--filter",
		},
		{
			name: "close typo with single dash",
			args: []string{"-fitler"},
			want: "--filter",
		},
		{
			name: "dry-run typo",
			args: []string{"--dryrun"},
			want: "--dry-run",
		},
		{
			name: "flag with value attached",
			args: []string{"--confg=/etc/vaultkeys.yaml"},
			want: "--config",
		},
		{
			name: "defined flag gives no suggestion",
			args: []string{"--filter", "github"},
			want: "",
		},
		{
			name: "nothing close",
			args: []string{"--zzzzzzzzzzz"},
			want: "",
		},
		{
			name: "positional args only",
			args: []string{"list"},
			want: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := suggestFlag(test.args, makeFlagSet())
			if got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
