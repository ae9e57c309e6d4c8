package utils

import (
	"errors"
	"strings"
	"testing"

	"inviteflow/models"
)

const validCSV = `FirstName,LastName,Email,Organization,Role,Achievement,Source
Asha,Mehta,asha@nivaan.in,Nivaan Labs,CTO,series-B fundraise,Economic Times
Ravi,Iyer,RAVI@kosha.io,Kosha,Founder,rural fintech rollout,
Leela,Nair,leela@vertex.dev,Vertex,VP Engineering,open hardware initiative,Mint
`

func TestParseRecipientsCSV(t *testing.T) {
	recipients, err := ParseRecipientsCSV(strings.NewReader(validCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipients) != 3 {
		t.Fatalf("expected 3 recipients, got %d", len(recipients))
	}

	for i, r := range recipients {
		if r.Status != models.RecipientNoResponse {
			t.Errorf("recipient %d status = %q, want no-response", i, r.Status)
		}
		if r.EmailOpened || r.EmailClicked {
			t.Errorf("recipient %d has engagement flags set", i)
		}
		if r.LastContactDate != nil {
			t.Errorf("recipient %d has a last contact date", i)
		}
	}

	if recipients[1].Email != "ravi@kosha.io" {
		t.Errorf("email not lowercased: %q", recipients[1].Email)
	}
	if recipients[1].Source != "" {
		t.Errorf("optional source should stay empty, got %q", recipients[1].Source)
	}
	if recipients[0].Achievement != "series-B fundraise" {
		t.Errorf("achievement = %q", recipients[0].Achievement)
	}
}

func TestParseRecipientsCSVRejectsWholeFile(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantLine int
	}{
		{
			name: "missing required column",
			csv:  "FirstName,LastName,Email,Organization,Role\nAsha,Mehta,asha@nivaan.in,Nivaan Labs,CTO\n",
		},
		{
			name:     "empty required cell",
			csv:      "FirstName,LastName,Email,Organization,Role,Achievement\nAsha,,asha@nivaan.in,Nivaan Labs,CTO,fundraise\n",
			wantLine: 2,
		},
		{
			name:     "short row",
			csv:      "FirstName,LastName,Email,Organization,Role,Achievement\nAsha,Mehta,asha@nivaan.in,Nivaan Labs,CTO,fundraise\nRavi,Iyer,ravi@kosha.io\n",
			wantLine: 3,
		},
		{
			name:     "long row",
			csv:      "FirstName,LastName,Email,Organization,Role,Achievement\nAsha,Mehta,asha@nivaan.in,Nivaan Labs,CTO,fundraise,extra,cells\n",
			wantLine: 2,
		},
		{
			name:     "invalid email",
			csv:      "FirstName,LastName,Email,Organization,Role,Achievement\nAsha,Mehta,not-an-email,Nivaan Labs,CTO,fundraise\n",
			wantLine: 2,
		},
		{
			name: "header only",
			csv:  "FirstName,LastName,Email,Organization,Role,Achievement\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipients, err := ParseRecipientsCSV(strings.NewReader(tt.csv))
			var formatErr *ImportFormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected ImportFormatError, got %v", err)
			}
			if tt.wantLine != 0 && formatErr.Line != tt.wantLine {
				t.Errorf("rejection names line %d, want %d", formatErr.Line, tt.wantLine)
			}
			if recipients != nil {
				t.Errorf("partial rows returned on rejected import: %d", len(recipients))
			}
		})
	}
}

// failAfterWriter errors once n bytes have been written, standing in for a
// sink that dies mid-export.
type failAfterWriter struct {
	n       int
	written int
}

func (w *failAfterWriter) Write(p []byte) (int, error) {
	if w.written+len(p) > w.n {
		return 0, errors.New("write failed")
	}
	w.written += len(p)
	return len(p), nil
}

func TestWriteRecipientsCSV(t *testing.T) {
	recipients := []models.Recipient{
		{FirstName: "Asha", LastName: "Mehta", Email: "asha@nivaan.in", Organization: "Nivaan Labs",
			Role: "CTO", Achievement: "series-B fundraise", Source: "Economic Times", Status: models.RecipientInvited},
		{FirstName: "Ravi", LastName: "Iyer", Email: "ravi@kosha.io", Organization: "Kosha",
			Role: "Founder", Achievement: "rural fintech rollout", Status: models.RecipientNoResponse},
	}

	var buf strings.Builder
	if err := WriteRecipientsCSV(&buf, recipients); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "FirstName,LastName,Email,Organization,Role,Achievement,Source,Status" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "invited") || !strings.Contains(lines[2], "no-response") {
		t.Errorf("status column missing from rows: %q / %q", lines[1], lines[2])
	}
}

func TestWriteRecipientsCSVSurfacesWriterError(t *testing.T) {
	recipients := []models.Recipient{
		{FirstName: "Asha", LastName: "Mehta", Email: "asha@nivaan.in", Organization: "Nivaan Labs",
			Role: "CTO", Achievement: "series-B fundraise", Status: models.RecipientNoResponse},
	}
	if err := WriteRecipientsCSV(&failAfterWriter{n: 10}, recipients); err == nil {
		t.Fatal("expected an error from a failing writer, got nil")
	}
}

func TestRecipientCSVTemplate(t *testing.T) {
	tmpl := RecipientCSVTemplate()
	if !strings.HasPrefix(tmpl, "FirstName,LastName,Email,") {
		t.Errorf("unexpected template header %q", tmpl)
	}
	if !strings.Contains(tmpl, "Source") {
		t.Errorf("template missing optional Source column: %q", tmpl)
	}
}
