package esm

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, text string) *Parsed {
	t.Helper()
	parsed, ok := ParseImport(text).(*Parsed)
	if !ok {
		t.Fatalf("ParseImport(%q) was not parsed", text)
	}
	return parsed
}

func TestParseImport(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		source string
		binds  map[string]bool
	}{
		{
			name:   "named",
			text:   `import { ColorPalette, ColorItem } from '@storybook/addon-docs/blocks';`,
			source: "@storybook/addon-docs/blocks",
			binds:  map[string]bool{"ColorPalette": true, "ColorItem": true, "Meta": false},
		},
		{
			name:   "default",
			text:   `import Meta from "./Meta"`,
			source: "./Meta",
			binds:  map[string]bool{"Meta": false},
		},
		{
			name:   "namespace",
			text:   `import * as Meta from "pkg";`,
			source: "pkg",
			binds:  map[string]bool{"Meta": false},
		},
		{
			name:   "renamed",
			text:   `import { Meta as DocsMeta } from "pkg";`,
			source: "pkg",
			binds:  map[string]bool{"Meta": true, "DocsMeta": false},
		},
		{
			name:   "default and named",
			text:   `import React, { useState } from "react";`,
			source: "react",
			binds:  map[string]bool{"useState": true, "React": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := mustParse(t, tt.text)
			if len(parsed.Statements) != 1 {
				t.Fatalf("got %d statements, want 1", len(parsed.Statements))
			}
			stmt := parsed.Statements[0]
			if stmt.Source() != tt.source {
				t.Errorf("Source() = %q, want %q", stmt.Source(), tt.source)
			}
			for name, want := range tt.binds {
				if got := stmt.Binds(name); got != want {
					t.Errorf("Binds(%q) = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestParseImportSkipsOtherStatements(t *testing.T) {
	parsed := mustParse(t, "import A from 'a';\nexport const x = 1;\nimport { B } from 'b';")
	if len(parsed.Statements) != 2 {
		t.Fatalf("got %d import statements, want 2", len(parsed.Statements))
	}
	if parsed.Statements[1].Source() != "b" {
		t.Errorf("second source = %q, want b", parsed.Statements[1].Source())
	}
}

func TestParseImportUnparseable(t *testing.T) {
	text := "import { from 'broken"
	result := ParseImport(text)
	bad, ok := result.(*Unparseable)
	if !ok {
		t.Fatalf("ParseImport(%q) = %T, want *Unparseable", text, result)
	}
	if bad.Raw != text {
		t.Errorf("Raw = %q, want %q", bad.Raw, text)
	}
	if bad.Err == nil {
		t.Error("Err is nil")
	}
}

func TestAddNamed(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "named list",
			text: `import { ColorPalette, ColorItem } from '@storybook/addon-docs/blocks';`,
			want: `import { ColorPalette, ColorItem, Meta } from '@storybook/addon-docs/blocks';`,
		},
		{
			name: "trailing comma",
			text: `import { ColorPalette, } from "pkg"`,
			want: `import { ColorPalette, Meta } from "pkg";`,
		},
		{
			name: "default only",
			text: `import Docs from "pkg";`,
			want: `import Docs, { Meta } from "pkg";`,
		},
		{
			name: "side effect only",
			text: `import "pkg";`,
			want: `import { Meta } from "pkg";`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := mustParse(t, tt.text)
			stmt := parsed.Statements[0]
			if err := stmt.AddNamed("Meta"); err != nil {
				t.Fatalf("AddNamed failed: %v", err)
			}
			if got := stmt.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if !stmt.Binds("Meta") {
				t.Error("statement does not bind Meta after AddNamed")
			}
			if got := parsed.String(); got != tt.want {
				t.Errorf("Parsed.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddNamedNamespace(t *testing.T) {
	parsed := mustParse(t, `import * as blocks from "pkg";`)
	err := parsed.Statements[0].AddNamed("Meta")
	if !errors.Is(err, ErrNamespaceImport) {
		t.Errorf("AddNamed error = %v, want ErrNamespaceImport", err)
	}
}
