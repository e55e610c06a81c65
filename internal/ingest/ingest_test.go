package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPlainText(t *testing.T) {
	path := writeFile(t, "notes.txt", "Hello world this is a test.")

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.PageCount != 1 {
		t.Fatalf("pages = %d, want 1", doc.PageCount)
	}
	words := doc.Pages[0].Words
	if len(words) != 6 || words[0].Text != "Hello" || words[5].Text != "test" {
		t.Errorf("words = %v", words)
	}
}

func TestLoadPlainTextFormFeedPages(t *testing.T) {
	path := writeFile(t, "report.txt", "page one text\fpage two text\fpage three text")

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.PageCount != 3 {
		t.Errorf("pages = %d, want 3", doc.PageCount)
	}
	if !strings.Contains(doc.Pages[1].OriginalText, "page two") {
		t.Errorf("page 2 text = %q", doc.Pages[1].OriginalText)
	}
}

func TestLoadUnknownExtensionFallsBackToText(t *testing.T) {
	path := writeFile(t, "data.log", "plain log line")

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Pages[0].OriginalText != "plain log line" {
		t.Errorf("text = %q", doc.Pages[0].OriginalText)
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error")
	}
}

func TestMarkdownHeadersStartPages(t *testing.T) {
	content := strings.Join([]string{
		"# Introduction",
		"Opening words here.",
		"",
		"# Methods",
		"More words follow.",
		"## Details",
		"Nested section stays close.",
	}, "\n")
	path := writeFile(t, "paper.md", content)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.PageCount != 3 {
		t.Fatalf("pages = %d, want 3", doc.PageCount)
	}
	if !strings.HasPrefix(doc.Pages[0].OriginalText, "# Introduction") {
		t.Errorf("page 1 = %q", doc.Pages[0].OriginalText)
	}
	if !strings.HasPrefix(doc.Pages[2].OriginalText, "## Details") {
		t.Errorf("page 3 = %q", doc.Pages[2].OriginalText)
	}
}

func TestMarkdownWithoutHeadersIsOnePage(t *testing.T) {
	path := writeFile(t, "plain.md", "just prose\nacross lines")

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.PageCount != 1 {
		t.Errorf("pages = %d, want 1", doc.PageCount)
	}
}

func TestTextFromHTML(t *testing.T) {
	htmlContent := `
	<html>
		<head><title>Test</title></head>
		<body>
			<h1>Chapter 1</h1>
			<p>This is the <b>first</b> paragraph.</p>
			<div>Some <span>nested</span> text.</div>
		</body>
	</html>
	`
	text := textFromHTML(htmlContent)
	for _, want := range []string{"Test", "Chapter 1", "first", "nested"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
	if strings.Contains(text, "<") {
		t.Errorf("markup leaked into text: %q", text)
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	want := map[string]bool{
		"EPUB (.epub)":              false,
		"Markdown (.md, .markdown)": false,
		"PDF (.pdf)":                false,
	}
	for _, f := range formats {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("%s not registered: %v", name, formats)
		}
	}
}
