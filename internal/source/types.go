package source

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// minPlausibleMillis rejects timestamps of one day past epoch or earlier.
// Values below this indicate a malformed field (seconds written as millis,
// zero defaults), not a real 1970 session.
const minPlausibleMillis = 24 * 60 * 60 * 1000

// FlexTime accepts either epoch-millis numbers or ISO-8601 strings, both of
// which appear in agent session logs.
type FlexTime struct {
	Millis int64
	OK     bool
}

// UnmarshalJSON decodes a number (epoch millis) or RFC3339 string.
// Unparseable or implausible values leave OK false; they are never an error
// because a bad timestamp must not sink the whole line.
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil
		}
		f.set(ts.UnixMilli())
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	f.set(int64(n))
	return nil
}

func (f *FlexTime) set(millis int64) {
	if millis <= minPlausibleMillis {
		return
	}
	f.Millis = millis
	f.OK = true
}

// RawEntry represents a single line in an agent JSONL session file.
// Only type "message" entries with an assistant role and a usage block are
// billing-relevant; everything else is skipped.
type RawEntry struct {
	Type      string      `json:"type"`
	Timestamp FlexTime    `json:"timestamp"`
	Message   *RawMessage `json:"message,omitempty"`
	Data      *RawData    `json:"data,omitempty"`
}

// RawData holds sidecar fields attached to a message entry.
type RawData struct {
	ToolsUsed []string `json:"tools_used,omitempty"`
}

// RawMessage is the assistant message envelope.
type RawMessage struct {
	Role       string          `json:"role"`
	Model      string          `json:"model"`
	Timestamp  FlexTime        `json:"timestamp"`
	Usage      *RawUsage       `json:"usage,omitempty"`
	Content    json.RawMessage `json:"content,omitempty"`
	StopReason string          `json:"stopReason,omitempty"`
}

// RawUsage holds token counts from the agent runtime.
type RawUsage struct {
	Input      int64 `json:"input"`
	Output     int64 `json:"output"`
	CacheRead  int64 `json:"cacheRead"`
	CacheWrite int64 `json:"cacheWrite"`
	Thinking   int64 `json:"thinking"`
}

// contentBlock is one element of a structured content array.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PromptText extracts the prompt text from a content field that is either a
// plain string or an ordered array of typed blocks (first text block wins).
func PromptText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}

	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}
	for _, b := range blocks {
		if b.Type == "text" {
			return b.Text
		}
	}
	return ""
}

// DiscoveredFile represents a session log found during directory scanning.
type DiscoveredFile struct {
	Path    string
	Agent   string
	Name    string
	ModTime time.Time
	Rotated bool
}
