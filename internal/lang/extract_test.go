//go:build cgo

package lang

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"codemap/internal/model"
)

func parseSource(t *testing.T, langName, src string) *sitter.Node {
	t.Helper()
	parser, ok := NewParser(langName)
	if !ok {
		t.Fatalf("no parser for %q", langName)
	}
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse %s: %v", langName, err)
	}
	return tree.RootNode()
}

func findNode(root *sitter.Node, types []string) *sitter.Node {
	var found *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if found != nil {
			return
		}
		if containsType(types, n.Type()) {
			found = n
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return found
}

func TestGoMethodExtraction(t *testing.T) {
	src := `package p

// Close releases the handle.
//
// Second paragraph is dropped.
func (s *Server) Close() error {
	s.flush()
	return nil
}
`
	root := parseSource(t, Go, src)
	decl := findNode(root, FunctionNodeTypes(Go))
	if decl == nil {
		t.Fatal("no function node found")
	}
	if got := DeclName(Go, decl, []byte(src)); got != "Close" {
		t.Errorf("DeclName = %q, want Close", got)
	}
	if got := Container(Go, decl, []byte(src)); got != "Server" {
		t.Errorf("Container = %q, want Server", got)
	}
	if got := Signature(Go, decl, []byte(src)); got != "func (s *Server) Close() error" {
		t.Errorf("Signature = %q", got)
	}
	if got := DocComment(Go, decl, []byte(src)); got != "Close releases the handle." {
		t.Errorf("DocComment = %q", got)
	}

	call := findNode(root, CallNodeTypes(Go))
	if call == nil {
		t.Fatal("no call node found")
	}
	if got := CallSymbol(Go, call, []byte(src)); got != "s.flush" {
		t.Errorf("CallSymbol = %q, want s.flush", got)
	}
	if got := EnclosingDecl(Go, call, []byte(src)); got != "Server.Close" {
		t.Errorf("EnclosingDecl = %q, want Server.Close", got)
	}
}

func TestGoImports(t *testing.T) {
	src := `package p

import (
	"fmt"
	stdos "os"
)
`
	root := parseSource(t, Go, src)
	imp := findNode(root, ImportNodeTypes(Go))
	if imp == nil {
		t.Fatal("no import node found")
	}
	got := Imports(Go, imp, []byte(src))
	if len(got) != 2 {
		t.Fatalf("got %d imports, want 2: %+v", len(got), got)
	}
	if got[0].Module != "fmt" || got[0].Kind != model.ImportDirect {
		t.Errorf("first import = %+v", got[0])
	}
	if got[1].Module != "os" || got[1].Alias != "stdos" {
		t.Errorf("second import = %+v", got[1])
	}
}

func TestPythonClassMethod(t *testing.T) {
	src := `class Engine:
    def start(self, force=False):
        """Start the engine.

        Longer description.
        """
        self.ignite()
`
	root := parseSource(t, Python, src)
	decl := findNode(root, FunctionNodeTypes(Python))
	if decl == nil {
		t.Fatal("no function node found")
	}
	if got := DeclName(Python, decl, []byte(src)); got != "start" {
		t.Errorf("DeclName = %q, want start", got)
	}
	if got := Container(Python, decl, []byte(src)); got != "Engine" {
		t.Errorf("Container = %q, want Engine", got)
	}
	if got := DocComment(Python, decl, []byte(src)); got != "Start the engine." {
		t.Errorf("DocComment = %q", got)
	}

	call := findNode(root, CallNodeTypes(Python))
	if call == nil {
		t.Fatal("no call node found")
	}
	if got := CallSymbol(Python, call, []byte(src)); got != "self.ignite" {
		t.Errorf("CallSymbol = %q, want self.ignite", got)
	}
	if got := EnclosingDecl(Python, call, []byte(src)); got != "Engine.start" {
		t.Errorf("EnclosingDecl = %q, want Engine.start", got)
	}
}

func TestPythonImports(t *testing.T) {
	src := `import os
import numpy as np
from collections import OrderedDict

def lazy():
    import json
`
	root := parseSource(t, Python, src)
	var all []model.Import
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if containsType(ImportNodeTypes(Python), n.Type()) {
			all = append(all, Imports(Python, n, []byte(src))...)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)

	if len(all) != 4 {
		t.Fatalf("got %d imports, want 4: %+v", len(all), all)
	}
	if all[0].Module != "os" {
		t.Errorf("imports[0] = %+v", all[0])
	}
	if all[1].Module != "numpy" || all[1].Alias != "np" {
		t.Errorf("imports[1] = %+v", all[1])
	}
	if all[2].Module != "collections" || len(all[2].Names) != 1 || all[2].Names[0] != "OrderedDict" {
		t.Errorf("imports[2] = %+v", all[2])
	}
	if all[3].Module != "json" || all[3].Kind != model.ImportConditional {
		t.Errorf("imports[3] = %+v, want conditional json", all[3])
	}
}

func TestJSReExport(t *testing.T) {
	src := `export { helper } from './util.js';
import fs from 'fs';
`
	root := parseSource(t, JavaScript, src)
	var all []model.Import
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if containsType(ImportNodeTypes(JavaScript), n.Type()) {
			all = append(all, Imports(JavaScript, n, []byte(src))...)
		}
	}
	if len(all) != 2 {
		t.Fatalf("got %d imports, want 2: %+v", len(all), all)
	}
	if all[0].Module != "./util.js" || all[0].Kind != model.ImportReExport {
		t.Errorf("imports[0] = %+v, want re-export of ./util.js", all[0])
	}
	if len(all[0].Names) != 1 || all[0].Names[0] != "helper" {
		t.Errorf("imports[0].Names = %v, want [helper]", all[0].Names)
	}
	if all[1].Module != "fs" || all[1].Kind != model.ImportDirect {
		t.Errorf("imports[1] = %+v", all[1])
	}
	if len(all[1].Names) != 1 || all[1].Names[0] != "fs" {
		t.Errorf("imports[1].Names = %v, want [fs]", all[1].Names)
	}
}

func TestModuleDoc(t *testing.T) {
	goSrc := "// Package p does a thing.\npackage p\n"
	root := parseSource(t, Go, goSrc)
	if got := ModuleDoc(Go, root, []byte(goSrc)); got != "Package p does a thing." {
		t.Errorf("go ModuleDoc = %q", got)
	}

	pySrc := "\"\"\"Utilities for parsing.\"\"\"\nx = 1\n"
	root = parseSource(t, Python, pySrc)
	if got := ModuleDoc(Python, root, []byte(pySrc)); got != "Utilities for parsing." {
		t.Errorf("python ModuleDoc = %q", got)
	}
}

func TestDocExcerptCapKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("a", 199) + strings.Repeat("é", 10)
	got := firstParagraph(long)
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt split a multi-byte rune: %q", got[len(got)-4:])
	}
	if len(got) > 200 {
		t.Errorf("excerpt not capped: %d bytes", len(got))
	}
	if got != long[:199] {
		t.Errorf("cut fell on the wrong boundary: %d bytes", len(got))
	}
}
