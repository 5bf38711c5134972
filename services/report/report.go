// Package report turns a finished search into the persisted report file and the terminal
// summary.
package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/meghashyamc/fuzzyfind/services/search"
)

// Write renders result and replaces the file at path in one step. Concurrent writers to the
// same report are serialised with a lock file next to it.
func Write(path string, result *search.Result) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	var buf bytes.Buffer
	if err := Format(&buf, result); err != nil {
		return err
	}

	return atomicWrite(path, buf.Bytes())
}

// Format writes the report layout: totals and timing, the keyword and its variations, then
// one line per match in the order they were found.
func Format(w io.Writer, result *search.Result) error {
	bw := bufio.NewWriter(w)
	session := result.Session

	fmt.Fprintf(bw, "Total matches found: %d\n", session.Count())
	fmt.Fprintf(bw, "Search completed in %.2f seconds\n\n", session.Elapsed.Seconds())

	fmt.Fprintf(bw, "Keyword: %s\n", result.Keyword)
	fmt.Fprintf(bw, "Found variations: %s\n\n\n\n", strings.Join(result.Variants, ", "))

	for _, record := range session.Records {
		fmt.Fprintln(bw, record.String())
	}

	if session.Capped {
		fmt.Fprintf(bw, "\nSearch stopped after reaching the limit of %d results\n", session.MaxResults)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func atomicWrite(path string, data []byte) error {
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	return nil
}
