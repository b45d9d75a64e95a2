package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"leadhunt-engine/internal/report"
)

const dateLayout = "2006-01-02 15:04:05"

var rule = strings.Repeat("=", 80)

// Export is one fetched channel window.
type Export struct {
	Channel     string
	DaysBack    int
	RetrievedAt time.Time
	Messages    []json.RawMessage // newest first
}

type rawFile struct {
	Channel       string            `json:"channel"`
	TotalMessages int               `json:"total_messages"`
	RetrievedAt   string            `json:"retrieved_at"`
	Messages      []json.RawMessage `json:"messages"`
}

// RawJSONPath maps "out/slack_jobs.txt" to "out/slack_jobs_raw.json".
func RawJSONPath(textPath string) string {
	return strings.TrimSuffix(textPath, ".txt") + "_raw.json"
}

// Write saves the raw JSON next to textPath and, when there are messages, the text dump.
// It returns the JSON path.
func (e Export) Write(textPath string) (string, error) {
	jsonPath := RawJSONPath(textPath)
	msgs := e.Messages
	if msgs == nil {
		msgs = []json.RawMessage{}
	}
	b, err := json.MarshalIndent(rawFile{
		Channel:       e.Channel,
		TotalMessages: len(msgs),
		RetrievedAt:   e.RetrievedAt.UTC().Format(time.RFC3339),
		Messages:      msgs,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	if err := report.WriteLines(jsonPath, []string{string(b)}); err != nil {
		return "", err
	}
	if len(e.Messages) == 0 {
		return jsonPath, nil
	}
	if err := report.WriteLines(textPath, e.Lines()); err != nil {
		return "", err
	}
	return jsonPath, nil
}

// LoadMessages reads the messages array back from a raw export.
func LoadMessages(path string) ([]json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 || !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("%s: empty or invalid json", path)
	}
	var out []json.RawMessage
	for _, m := range gjson.GetBytes(b, "messages").Array() {
		out = append(out, json.RawMessage(m.Raw))
	}
	return out, nil
}

// Lines renders the human readable dump, oldest message first.
func (e Export) Lines() []string {
	lines := []string{
		fmt.Sprintf("=== Messages from #%s (Last %d days) ===", e.Channel, e.DaysBack),
		fmt.Sprintf("Total messages: %d", len(e.Messages)),
		"Retrieved: " + e.RetrievedAt.UTC().Format(time.RFC3339),
		rule,
		"",
	}
	for i := range e.Messages {
		raw := e.Messages[len(e.Messages)-1-i]
		lines = append(lines, messageLines(i+1, gjson.ParseBytes(raw))...)
	}
	return lines
}

func messageLines(n int, m gjson.Result) []string {
	ts := m.Get("ts").String()
	date := "Unknown date"
	if t, ok := ParseTS(ts); ok {
		date = t.Format(dateLayout)
	}

	out := []string{
		rule,
		fmt.Sprintf("Message #%d", n),
		rule,
		"Timestamp: " + ts,
		"Date: " + date,
		"User ID: " + orDefault(m.Get("user").String(), "Unknown"),
		"Type: " + orDefault(m.Get("type").String(), "message"),
	}
	if st := m.Get("subtype").String(); st != "" {
		out = append(out, "Subtype: "+st)
	}
	if tts := m.Get("thread_ts").String(); tts != "" {
		out = append(out, "Thread TS: "+tts, fmt.Sprintf("Replies: %d", m.Get("reply_count").Int()))
	}
	out = append(out, "", "TEXT:", orDefault(m.Get("text").String(), "(empty)"), "")

	if rs := m.Get("reactions").Array(); len(rs) > 0 {
		out = append(out, "REACTIONS:")
		for _, r := range rs {
			out = append(out, fmt.Sprintf("  %s: %d", r.Get("name").String(), r.Get("count").Int()))
		}
		out = append(out, "")
	}

	if atts := m.Get("attachments").Array(); len(atts) > 0 {
		out = append(out, fmt.Sprintf("ATTACHMENTS: (%d total)", len(atts)))
		for i, a := range atts {
			out = append(out, fmt.Sprintf("  Attachment %d:", i+1))
			for _, k := range []string{"title", "title_link", "text", "fallback", "pretext", "footer", "author_name"} {
				if v := a.Get(k).String(); v != "" {
					out = append(out, fmt.Sprintf("    %s: %s", k, v))
				}
			}
			if fs := a.Get("fields").Array(); len(fs) > 0 {
				out = append(out, "    Fields:")
				for _, f := range fs {
					out = append(out, fmt.Sprintf("      - %s: %s", f.Get("title").String(), f.Get("value").String()))
				}
			}
			out = append(out, "")
		}
	}

	if files := m.Get("files").Array(); len(files) > 0 {
		out = append(out, fmt.Sprintf("FILES: (%d total)", len(files)))
		for i, f := range files {
			out = append(out,
				fmt.Sprintf("  File %d:", i+1),
				"    Name: "+orDefault(f.Get("name").String(), "Unknown"),
				"    Title: "+f.Get("title").String(),
				"    Mimetype: "+f.Get("mimetype").String(),
				fmt.Sprintf("    Size: %d bytes", f.Get("size").Int()),
				"    URL: "+f.Get("url_private").String(),
				"    Permalink: "+f.Get("permalink").String(),
				"",
			)
		}
	}

	if blocks := m.Get("blocks").Array(); len(blocks) > 0 {
		out = append(out, fmt.Sprintf("BLOCKS: (%d total)", len(blocks)))
		for i, b := range blocks {
			typ := orDefault(b.Get("type").String(), "unknown")
			out = append(out, fmt.Sprintf("  Block %d (type: %s):", i+1, typ))
			switch typ {
			case "section":
				if t := b.Get("text"); t.IsObject() {
					out = append(out, "    Text: "+t.Get("text").String())
				}
			case "rich_text":
				for _, el := range b.Get("elements").Array() {
					for _, e := range el.Get("elements").Array() {
						if s := e.Get("text").String(); s != "" {
							out = append(out, "    "+s)
						}
					}
				}
			}
			out = append(out, "")
		}
	}

	if md := m.Get("metadata"); md.IsObject() && len(md.Map()) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(md.Raw), "", "    "); err != nil {
			buf.Reset()
			buf.WriteString(md.Raw)
		}
		out = append(out, "METADATA:", "  "+buf.String(), "")
	}

	if ed := m.Get("edited"); ed.Exists() {
		ets := ed.Get("ts").String()
		when := ets
		if t, ok := ParseTS(ets); ok {
			when = t.Format(dateLayout)
		}
		out = append(out, fmt.Sprintf("EDITED: %s by user %s", when, orDefault(ed.Get("user").String(), "Unknown")), "")
	}

	return append(out, "")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
