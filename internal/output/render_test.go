package output_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"jira/internal/output"
)

func sampleRecords() []output.Record {
	return []output.Record{
		{output.F("ID", "DEMO-2"), output.F("Summary", "Second, with comma"), output.F("Labels", []string{"a", "b"})},
		{output.F("ID", "DEMO-1"), output.F("Summary", "First"), output.F("Labels", nil)},
	}
}

func TestRenderTableKeepsColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := output.Render(&buf, "table", sampleRecords(), output.Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	id := strings.Index(out, "ID")
	summary := strings.Index(out, "Summary")
	labels := strings.Index(out, "Labels")
	if id < 0 || summary < id || labels < summary {
		t.Fatalf("headers out of order:\n%s", out)
	}
	if !strings.Contains(out, "a, b") {
		t.Fatalf("expected joined list cell:\n%s", out)
	}
	if !strings.Contains(out, "╭") {
		t.Fatalf("expected rounded style:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected ANSI codes without colorize:\n%s", out)
	}
}

func TestRenderJSONPreservesFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := output.Render(&buf, "json", sampleRecords(), output.Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Index(out, `"ID"`) > strings.Index(out, `"Summary"`) {
		t.Fatalf("json keys reordered:\n%s", out)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(decoded) != 2 || decoded[0]["ID"] != "DEMO-2" {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
}

func TestRenderCSVQuotesCommas(t *testing.T) {
	var buf bytes.Buffer
	if err := output.Render(&buf, "csv", sampleRecords(), output.Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "ID,Summary,Labels" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != `DEMO-2,"Second, with comma","a, b"` {
		t.Fatalf("expected RFC 4180 quoting, got %q", lines[1])
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("csv reader rejected output: %v", err)
	}
	if rows[1][1] != "Second, with comma" || rows[1][2] != "a, b" || rows[2][2] != "" {
		t.Fatalf("unexpected parsed rows %q", rows)
	}
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := output.Render(&buf, "markdown", sampleRecords(), output.Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "| ID | Summary | Labels |") {
		t.Fatalf("unexpected markdown:\n%s", buf.String())
	}
}

func TestRenderYAMLPreservesFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := output.Render(&buf, "yaml", sampleRecords()[:1], output.Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	prefix := "- ID: DEMO-2\n  Summary: Second, with comma\n  Labels:\n"
	if !strings.HasPrefix(out, prefix) || !strings.Contains(out, "- a\n") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	cases := map[string]string{
		"table":    "No results\n",
		"markdown": "No results\n",
		"json":     "[]\n",
		"yaml":     "[]\n",
		"csv":      "",
	}
	for format, want := range cases {
		var buf bytes.Buffer
		if err := output.Render(&buf, format, nil, output.Options{}); err != nil {
			t.Fatalf("%s: render: %v", format, err)
		}
		if buf.String() != want {
			t.Fatalf("%s: got %q want %q", format, buf.String(), want)
		}
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	err := output.Render(&bytes.Buffer{}, "xml", sampleRecords(), output.Options{})
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
	if output.ValidFormat("xml") || !output.ValidFormat("YAML") {
		t.Fatal("ValidFormat mismatch")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if output.ShouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffer must not be treated as a terminal")
	}
}
