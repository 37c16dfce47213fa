// Package storage persists the moderation audit trail as line-oriented
// flat files. Rosters and login state are deliberately never persisted;
// they are rebuilt from live announcements.
package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

const maxEntries = 500

// LoadAudit reads the moderation audit log.
// Returns entries in reverse chronological order (newest first).
func LoadAudit(dataDir string) ([]string, error) {
	path := filepath.Join(dataDir, "audit.txt")
	lines, err := readLines(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	// Reverse so newest is first (file stores oldest first)
	return reverse(lines), nil
}

// SaveAudit writes the moderation audit log.
// Expects entries in reverse chronological order (newest first).
func SaveAudit(dataDir string, entries []string) error {
	path := filepath.Join(dataDir, "audit.txt")
	// Reverse back to oldest-first for file storage
	return writeLines(path, reverse(entries))
}

// AddEntry prepends a new audit entry (keeping newest first in memory)
// and caps the list.
func AddEntry(entries []string, entry string) []string {
	entries = append([]string{entry}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func writeLines(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}

func reverse(s []string) []string {
	result := make([]string, len(s))
	for i, v := range s {
		result[len(s)-1-i] = v
	}
	return result
}
