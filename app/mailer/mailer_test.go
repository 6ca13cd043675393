package mailer

import (
	"strings"
	"testing"

	"github.com/lysyi3m/oss-radar/app/database"
)

func testMailer(t *testing.T) *Mailer {
	t.Helper()
	m, err := NewMailer("smtp.example.com", "587", "user", "pass",
		"radar@example.com", []string{"dev@example.com"})
	if err != nil {
		t.Fatalf("Failed to create mailer: %v", err)
	}
	return m
}

func sampleData() EmailData {
	return EmailData{
		Title: "Daily Pain Report",
		Date:  "2025-06-01",
		Entries: []database.ReportEntry{
			{Position: 1, Title: "Burned out after five years", URL: "https://example.com/a",
				Platform: "hackernews", Author: "alice", FinalScore: 0.912, SourceTier: "live"},
			{Position: 2, Title: "Dependency hell again", URL: "https://example.com/b",
				Platform: "devto", FinalScore: 0.544, SourceTier: "archive-7d"},
		},
	}
}

func TestMailer_Render(t *testing.T) {
	html, text, err := testMailer(t).Render(sampleData())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{"Daily Pain Report", "Burned out after five years",
		"https://example.com/a", "0.912", "archive-7d"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML body missing %q", want)
		}
		if !strings.Contains(text, want) {
			t.Errorf("Text body missing %q", want)
		}
	}

	if !strings.Contains(html, `<a href="https://example.com/a">`) {
		t.Error("HTML body should link entries")
	}
}

func TestMailer_RenderEmptyReport(t *testing.T) {
	html, text, err := testMailer(t).Render(EmailData{Title: "Daily Pain Report", Date: "2025-06-01"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(html, "No pain signals today.") {
		t.Error("Empty HTML report should carry the placeholder line")
	}
	if !strings.Contains(text, "No pain signals today.") {
		t.Error("Empty text report should carry the placeholder line")
	}
}

func TestMailer_RenderEscapesHTML(t *testing.T) {
	data := EmailData{
		Title: "Daily Pain Report",
		Date:  "2025-06-01",
		Entries: []database.ReportEntry{
			{Position: 1, Title: "<script>alert(1)</script>", URL: "https://example.com/a",
				Platform: "hackernews", SourceTier: "live"},
		},
	}

	html, _, err := testMailer(t).Render(data)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("Post titles must be escaped in the HTML body")
	}
}

func TestMailer_BuildMessage(t *testing.T) {
	msg, err := testMailer(t).buildMessage("Subject line", "<p>html</p>", "plain")
	if err != nil {
		t.Fatalf("buildMessage failed: %v", err)
	}

	s := string(msg)
	for _, want := range []string{
		"From: radar@example.com",
		"To: dev@example.com",
		"Subject: Subject line",
		"multipart/alternative",
		"text/plain; charset=utf-8",
		"text/html; charset=utf-8",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Message missing %q", want)
		}
	}

	// Plaintext part must precede the HTML part.
	if strings.Index(s, "plain") > strings.Index(s, "<p>html</p>") {
		t.Error("Plaintext part should come before the HTML part")
	}
}

func TestMailer_DisabledWithoutHost(t *testing.T) {
	m, err := NewMailer("", "587", "", "", "radar@example.com", []string{"dev@example.com"})
	if err != nil {
		t.Fatalf("Failed to create mailer: %v", err)
	}

	if m.Enabled() {
		t.Error("Mailer without an SMTP host should be disabled")
	}
	// Send on a disabled mailer is a silent no-op.
	if err := m.Send("subject", sampleData()); err != nil {
		t.Errorf("Disabled mailer should not attempt delivery: %v", err)
	}
}
