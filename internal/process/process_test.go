package process

import (
	"strings"
	"testing"
)

func threePageTexts() []string {
	return []string{
		"My Great Book\nThe cat sat on the mat.\nIt was warm.\nPage 1",
		"My Great Book\nThe dog lay in the sun.\nAll afternoon.\nPage 2",
		"My Great Book\nThe bird flew away.\nNobody noticed.\nPage 3",
	}
}

func TestNormalizeLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "My   Great\tBook", "My Great Book"},
		{"digit runs become #", "Page 12", "Page #"},
		{"multiple digit runs", "Ch 3, p. 41", "Ch #, p. #"},
		{"plain line unchanged", "The cat sat", "The cat sat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeLine(tt.input); got != tt.want {
				t.Errorf("normalizeLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectBoilerplate(t *testing.T) {
	headers, footers := DetectBoilerplate(threePageTexts())

	if len(headers) != 1 || headers[0] != "My Great Book" {
		t.Errorf("headers = %v, want [My Great Book]", headers)
	}
	if len(footers) != 1 || footers[0] != "Page #" {
		t.Errorf("footers = %v, want [Page #]", footers)
	}
}

func TestDetectBoilerplateNeedsRepetition(t *testing.T) {
	headers, footers := DetectBoilerplate([]string{
		"Unique opener\nbody text here\nclosing line",
		"Another opener\nmore body\nanother close",
	})
	if len(headers) != 0 || len(footers) != 0 {
		t.Errorf("non-repeating lines detected as boilerplate: headers=%v footers=%v", headers, footers)
	}

	headers, footers = DetectBoilerplate([]string{"only one page"})
	if headers != nil || footers != nil {
		t.Errorf("single page produced patterns: %v %v", headers, footers)
	}
}

func TestStripBoilerplate(t *testing.T) {
	headers, footers := DetectBoilerplate(threePageTexts())

	stripped, removed := StripBoilerplate(threePageTexts()[0], headers, footers)
	if !removed {
		t.Fatal("expected boilerplate to be removed")
	}
	if strings.Contains(stripped, "My Great Book") || strings.Contains(stripped, "Page 1") {
		t.Errorf("stripped text still contains boilerplate: %q", stripped)
	}
	if !strings.Contains(stripped, "The cat sat on the mat.") {
		t.Errorf("stripped text lost body: %q", stripped)
	}

	// Text without matching edges passes through untouched.
	same, removed := StripBoilerplate("just body text", headers, footers)
	if removed || same != "just body text" {
		t.Errorf("clean page modified: %q removed=%v", same, removed)
	}
}

func TestBuildResult(t *testing.T) {
	images := map[int][]byte{1: {0x89, 'P'}}
	result := BuildResult(threePageTexts(), images)

	if !result.Success {
		t.Error("result not marked successful")
	}
	if result.PageCount != 3 || len(result.Pages) != 3 {
		t.Fatalf("page count = %d/%d, want 3/3", result.PageCount, len(result.Pages))
	}

	first := result.Pages[0]
	if first.Number != 1 {
		t.Errorf("first page number = %d, want 1", first.Number)
	}
	if !first.BoilerplateRemoved {
		t.Error("boilerplate not removed on page 1")
	}
	if strings.Contains(first.ProcessedText, "My Great Book") {
		t.Errorf("processed text keeps header: %q", first.ProcessedText)
	}
	if len(first.Words) == 0 {
		t.Error("no words derived from processed text")
	}
	for _, w := range first.Words {
		if first.ProcessedText[w.Start:w.End] != w.Text {
			t.Errorf("word %q offsets do not match processed text", w.Text)
		}
	}

	if result.Pages[0].Image != nil {
		t.Error("page 1 unexpectedly has an image")
	}
	if result.Pages[1].Image == nil {
		t.Error("page 2 missing its image")
	}
}

func TestPageNumberFromImageFile(t *testing.T) {
	tests := []struct {
		name string
		file string
		page int
		ok   bool
	}{
		{"typical pdfcpu name", "report_3_Im0.png", 3, true},
		{"multi-digit page", "scan_12_Im1.jpg", 12, true},
		{"no page marker", "cover.png", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, ok := pageNumberFromImageFile(tt.file)
			if page != tt.page || ok != tt.ok {
				t.Errorf("pageNumberFromImageFile(%q) = %d,%v want %d,%v", tt.file, page, ok, tt.page, tt.ok)
			}
		})
	}
}
