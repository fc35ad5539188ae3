package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// chainPages is a three page corpus: 1 <-> 2 <-> 3.
var chainPages = map[string]string{
	"1.html": `<html><body><a href="2.html">two</a></body></html>`,
	"2.html": `<html><body><a href="1.html">one</a> <a href="3.html">three</a></body></html>`,
	"3.html": `<html><body><a href="2.html">two</a></body></html>`,
}

// chainIteration is the iterative result of chainPages at the default settings.
const chainIteration = "PageRank Results from Iteration\n" +
	"  1.html: 0.2570\n" +
	"  2.html: 0.4860\n" +
	"  3.html: 0.2570\n"

// writeCorpus creates a corpus directory holding the given files.
func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

// writeConfig writes a configuration file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pagerank.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
