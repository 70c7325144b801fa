package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"SavePublish/internal/domain"
)

const auditSheet = "Publish audit"

var auditHeaders = []string{"Time (UTC)", "Actor", "Item ID", "Language", "Version", "Session", "Message"}

// ExportAudit renders audit entries into a workbook with one row per entry.
func ExportAudit(entries []domain.AuditEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", auditSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range auditHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(auditSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(auditSheet, 1, 1, headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, e := range entries {
		row := []any{
			e.CreatedAt.UTC().Format(time.DateTime),
			e.Actor,
			e.Item.ID,
			e.Item.Language,
			e.Item.Version,
			e.SessionID,
			e.Message,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(auditSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(auditSheet, "A", "A", 20); err != nil {
		return nil, fmt.Errorf("set width: %w", err)
	}
	if err := f.SetColWidth(auditSheet, "G", "G", 60); err != nil {
		return nil, fmt.Errorf("set width: %w", err)
	}

	return f, nil
}

// WriteAudit streams the audit workbook to w.
func WriteAudit(w io.Writer, entries []domain.AuditEntry) error {
	f, err := ExportAudit(entries)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
