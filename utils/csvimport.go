package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/badoux/checkmail"

	"inviteflow/models"
)

// Recipient CSV columns. Source is the only optional one.
var requiredImportColumns = []string{"FirstName", "LastName", "Email", "Organization", "Role", "Achievement"}

// ImportFormatError rejects a recipient import as one unit: no rows are
// applied when any part of the file is malformed.
type ImportFormatError struct {
	Line   int
	Reason string
}

func (e *ImportFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("import rejected: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("import rejected: %s", e.Reason)
}

// ParseRecipientsCSV reads a recipient upload and returns one Recipient
// per data row, all starting at no-response with engagement flags clear.
// The header must carry every required column; a short row, an empty
// required cell or an invalid address fails the whole file.
func ParseRecipientsCSV(r io.Reader) ([]models.Recipient, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Row-length validation is ours: it reports the offending line in the
	// rejection instead of a generic parse error.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ImportFormatError{Reason: err.Error()}
	}
	if len(records) < 2 {
		return nil, &ImportFormatError{Reason: "file must have a header and at least one row"}
	}

	header := records[0]
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}
	for _, col := range requiredImportColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, &ImportFormatError{Reason: "missing required column " + col}
		}
	}

	recipients := make([]models.Recipient, 0, len(records)-1)
	for n, row := range records[1:] {
		line := n + 2
		if len(row) != len(header) {
			return nil, &ImportFormatError{Line: line, Reason: "wrong number of fields"}
		}
		cell := func(name string) string {
			idx, ok := colIndex[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		for _, col := range requiredImportColumns {
			if cell(col) == "" {
				return nil, &ImportFormatError{Line: line, Reason: col + " is empty"}
			}
		}
		email := strings.ToLower(cell("Email"))
		if err := checkmail.ValidateFormat(email); err != nil {
			return nil, &ImportFormatError{Line: line, Reason: "invalid email " + email}
		}

		recipients = append(recipients, models.Recipient{
			FirstName:    cell("FirstName"),
			LastName:     cell("LastName"),
			Email:        email,
			Organization: cell("Organization"),
			Role:         cell("Role"),
			Achievement:  cell("Achievement"),
			Source:       cell("Source"),
			Status:       models.RecipientNoResponse,
		})
	}

	return recipients, nil
}

// RecipientCSVTemplate returns the header row users download before
// uploading their list.
func RecipientCSVTemplate() string {
	return strings.Join(append(requiredImportColumns, "Source"), ",") + "\n"
}

// WriteRecipientsCSV writes the export form of a recipient list: the
// import columns plus Status, one row per recipient.
func WriteRecipientsCSV(w io.Writer, recipients []models.Recipient) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"FirstName", "LastName", "Email", "Organization", "Role", "Achievement", "Source", "Status"}); err != nil {
		return err
	}
	for _, r := range recipients {
		if err := writer.Write([]string{
			r.FirstName, r.LastName, r.Email, r.Organization, r.Role, r.Achievement, r.Source, r.Status,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
