// Package source discovers and parses agent JSONL session files.
package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	liveSuffix     = ".jsonl"
	rotatedPattern = ".jsonl.deleted"
)

// ListAgents enumerates agent directories under the sessions root.
// A missing root is an empty fleet, not an error.
func ListAgents(sessionsDir string) ([]string, error) {
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var agents []string
	for _, e := range entries {
		if e.IsDir() {
			agents = append(agents, e.Name())
		}
	}
	sort.Strings(agents)
	return agents, nil
}

// SessionFiles returns the live session logs for one agent, for bulk scans.
// Rotated files are excluded here; unreadable directories yield nil.
func SessionFiles(sessionsDir, agent string) []DiscoveredFile {
	return scanAgentDir(sessionsDir, agent, false)
}

// LatestSessionFile returns the most-recently-modified session log for an
// agent, considering both live and rotated files. The boolean is false when
// the agent has no session files at all.
func LatestSessionFile(sessionsDir, agent string) (DiscoveredFile, bool) {
	files := scanAgentDir(sessionsDir, agent, true)
	if len(files) == 0 {
		return DiscoveredFile{}, false
	}

	// Stable sort by name so mtime ties break deterministically.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	latest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(latest.ModTime) {
			latest = f
		}
	}
	return latest, true
}

// scanAgentDir lists the session files of one agent. All I/O failures are
// swallowed into an empty result: one unreadable agent must never abort a
// fleet-wide scan.
func scanAgentDir(sessionsDir, agent string, includeRotated bool) []DiscoveredFile {
	dir := filepath.Join(sessionsDir, agent, "sessions")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []DiscoveredFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		rotated := strings.Contains(name, rotatedPattern)
		live := !rotated && strings.HasSuffix(name, liveSuffix)
		if !live && !(rotated && includeRotated) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		files = append(files, DiscoveredFile{
			Path:    filepath.Join(dir, name),
			Agent:   agent,
			Name:    name,
			ModTime: info.ModTime(),
			Rotated: rotated,
		})
	}
	return files
}

// CountAgents returns the number of unique agents in a set of discovered files.
func CountAgents(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Agent] = struct{}{}
	}
	return len(seen)
}
