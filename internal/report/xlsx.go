package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/tender-bid/internal/pipeline"
)

const (
	SheetSummary   = "Summary"
	SheetProducts  = "Products"
	SheetTests     = "Tests"
	SheetBreakdown = "Breakdown"
)

// Workbook renders the record as an XLSX workbook with one sheet per section.
func Workbook(rec *pipeline.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	for _, name := range []string{SheetProducts, SheetTests, SheetBreakdown} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	// Column header style: bold, white text, charcoal background.
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	sheets := map[string][][]any{
		SheetSummary:   summaryRows(rec),
		SheetProducts:  productRows(rec),
		SheetTests:     testRows(rec),
		SheetBreakdown: breakdownRows(rec),
	}
	for name, rows := range sheets {
		if err := writeRows(f, name, rows, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 22)
}

func summaryRows(rec *pipeline.Record) [][]any {
	rows := [][]any{{"Field", "Value"}}
	add := func(k string, v any) { rows = append(rows, []any{k, v}) }

	add("Run ID", rec.RunID)
	add("Status", rec.Status)
	if rec.Message != "" {
		add("Message", rec.Message)
	}
	add("Recommendation", rec.Recommendation)
	if s := rec.SelectedRFP; s != nil {
		add("Tender ID", s.TenderID)
		add("Title", s.Title)
		add("Organization", s.Organization)
		add("Deadline", s.Deadline)
		add("Estimated Value", s.EstimatedValue)
	}
	if d := rec.Decision; d != nil {
		add("Win Probability", d.WinProbability)
		add("Quoted Value", d.QuotedValue)
	}
	add("Engineering Action Required", rec.EngineeringActionRequired)
	return rows
}

func productRows(rec *pipeline.Record) [][]any {
	rows := [][]any{{"Item", "SKU", "Description", "Quantity", "Unit", "Unit Price", "Material Cost", "Match Score"}}
	if rec.Overall == nil {
		return rows
	}
	for _, p := range rec.Overall.OEMProducts {
		rows = append(rows, []any{p.ItemNo, p.SKU, p.Description, p.Quantity, p.Unit, p.UnitPrice, p.TotalMaterialCost, p.MatchScore})
	}
	return rows
}

func testRows(rec *pipeline.Record) [][]any {
	rows := [][]any{{"Test", "Cost"}}
	if rec.Overall == nil {
		return rows
	}
	for _, t := range rec.Overall.TestsRequired {
		rows = append(rows, []any{t.TestName, t.Cost})
	}
	return rows
}

func breakdownRows(rec *pipeline.Record) [][]any {
	rows := [][]any{{"Component", "Amount", "Rate"}}
	if rec.Pricing == nil || rec.Pricing.Details == nil {
		return rows
	}
	d := rec.Pricing.Details
	b, pct := d.Breakdown, d.Breakdown.AppliedPcts
	rows = append(rows,
		[]any{"Material", d.TotalMaterialCost, nil},
		[]any{"Services", d.TotalServicesCost, nil},
		[]any{"Grand Total", d.GrandTotal, nil},
		[]any{"Transport", b.TransportCost, pct.TransportPct},
		[]any{"Installation Support", b.InstallationSupport, pct.InstallationSupportPct},
		[]any{"Contingency", b.Contingency, pct.ContingencyPct},
		[]any{"Profit Margin", b.ProfitMargin, pct.ProfitMarginPct},
		[]any{"GST", b.GST, pct.GSTPct},
		[]any{"Final Quote", d.FinalQuote, nil},
	)
	return rows
}
