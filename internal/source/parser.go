package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/rmirandamx/agentspend/internal/classify"
	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/model"
)

// ParseResult holds the output of parsing a single JSONL session file.
type ParseResult struct {
	Requests    []model.Request
	ParseErrors int
	Err         error
}

// ParseFile reads a JSONL session file and extracts one Request per billable
// assistant message. Malformed lines are counted and skipped; only a failure
// to open or scan the file itself surfaces as Err.
//
// Request IDs are a content-derived composite of timestamp, agent, and a
// digest of file name + line number, so re-parsing an unchanged file always
// reproduces the same IDs and re-ingestion stays idempotent.
func ParseFile(df DiscoveredFile, cls *classify.Classifier, prices *config.PriceTable) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var result ParseResult
	mtimeMillis := df.ModTime.UnixMilli()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 2*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry RawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			result.ParseErrors++
			continue
		}

		if entry.Type != "message" || entry.Message == nil {
			continue
		}
		msg := entry.Message
		if msg.Role != "assistant" || msg.Usage == nil {
			continue
		}

		// Entry timestamp, then message timestamp, then file mtime.
		// FlexTime has already rejected implausible values.
		ts := entry.Timestamp.Millis
		if !entry.Timestamp.OK {
			if msg.Timestamp.OK {
				ts = msg.Timestamp.Millis
			} else {
				ts = mtimeMillis
			}
		}

		toolsCount := 0
		if entry.Data != nil {
			toolsCount = len(entry.Data.ToolsUsed)
		}

		prompt := PromptText(msg.Content)
		usage := msg.Usage

		classification, reasoning := cls.Classify(classify.Record{
			HasMessage:     true,
			HasUsage:       true,
			InputTokens:    usage.Input,
			ThinkingTokens: usage.Thinking,
			ToolsCount:     toolsCount,
			PromptText:     prompt,
		})

		modelUsed := msg.Model
		if modelUsed == "" {
			modelUsed = config.FallbackModel
		}

		stopReason := msg.StopReason
		if stopReason == "" {
			stopReason = "unknown"
		}

		result.Requests = append(result.Requests, model.Request{
			ID:             requestID(ts, df.Agent, df.Name, lineNo),
			Timestamp:      ts,
			AgentName:      df.Agent,
			ModelUsed:      modelUsed,
			InputTokens:    usage.Input,
			OutputTokens:   usage.Output,
			CacheRead:      usage.CacheRead,
			CacheWrite:     usage.CacheWrite,
			ThinkingTokens: usage.Thinking,
			ToolsCount:     toolsCount,
			TotalCostUSD:   config.Round6(prices.CalculateCost(usage.Input, usage.Output, modelUsed)),
			Classification: classification,
			Reasoning:      reasoning,
			PromptPreview:  preview(prompt, 100),
			Success:        msg.StopReason != "error",
			StopReason:     stopReason,
		})
	}

	if err := scanner.Err(); err != nil {
		result.Err = err
	}
	return result
}

// requestID builds a stable, content-derived request identifier.
// Two requests can share a timestamp, so the agent plus a digest of the
// file name and line number disambiguate without any randomness.
func requestID(timestamp int64, agent, fileName string, lineNo int) string {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s\x00%s\x00%d", agent, fileName, lineNo)
	return fmt.Sprintf("%d-%s-%016x", timestamp, agent, h.Sum64())
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
