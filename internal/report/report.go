// Package report renders a decision record for people and other tools.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spigell/tender-bid/internal/pipeline"
	"github.com/spigell/tender-bid/internal/utils"
)

// CSVHeader is the column order of the one-row summary CSV.
var CSVHeader = []string{
	"tender_id", "title", "organization", "estimated_value",
	"recommendation", "win_probability", "quoted_value", "grand_total",
}

func WriteJSON(w io.Writer, rec *pipeline.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

// WriteCSV writes the header and a single summary row.
func WriteCSV(w io.Writer, rec *pipeline.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	if err := cw.Write(summaryRow(rec)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func summaryRow(rec *pipeline.Record) []string {
	row := make([]string, len(CSVHeader))
	if s := rec.SelectedRFP; s != nil {
		row[0], row[1], row[2] = s.TenderID, s.Title, s.Organization
		row[3] = num(s.EstimatedValue)
	}
	row[4] = rec.Recommendation
	if d := rec.Decision; d != nil {
		row[5] = num(d.WinProbability)
		row[6] = num(d.QuotedValue)
	}
	if o := rec.Overall; o != nil {
		row[7] = num(o.GrandTotal)
	}
	return row
}

// WriteText writes a short plain-text summary.
func WriteText(w io.Writer, rec *pipeline.Record) error {
	var b strings.Builder
	b.WriteString("CABLE RFP BID DECISION\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Status: %s\n", rec.Status)
	if rec.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", rec.Message)
	}
	fmt.Fprintf(&b, "Recommendation: %s\n", rec.Recommendation)

	if d := rec.Decision; d != nil {
		fmt.Fprintf(&b, "Win Probability: %.1f%%\n", d.WinProbability)
		fmt.Fprintf(&b, "Quoted Value: Rs %s\n", utils.FormatMoney(d.QuotedValue))
		if d.EstimatedValue > 0 {
			fmt.Fprintf(&b, "Quote Competitiveness: %.1f%% of estimate\n", d.QuotedValue/d.EstimatedValue*100)
		} else {
			b.WriteString("Quote Competitiveness: n/a (no estimate)\n")
		}
	}

	if s := rec.SelectedRFP; s != nil {
		b.WriteString("\nSelected RFP\n")
		fmt.Fprintf(&b, "  ID: %s\n", s.TenderID)
		fmt.Fprintf(&b, "  Title: %s\n", s.Title)
		fmt.Fprintf(&b, "  Organization: %s\n", s.Organization)
		fmt.Fprintf(&b, "  Deadline: %s\n", s.Deadline)
		fmt.Fprintf(&b, "  Estimated Value: Rs %s\n", utils.FormatMoney(s.EstimatedValue))
	}

	if o := rec.Overall; o != nil {
		b.WriteString("\nOverall Response\n")
		for _, p := range o.OEMProducts {
			fmt.Fprintf(&b, "  - %s: Rs %s/m x %g %s (Match: %g%%)\n", p.SKU, utils.FormatMoney(p.UnitPrice), p.Quantity, p.Unit, p.MatchScore)
		}
		fmt.Fprintf(&b, "  Tests Required: %d\n", len(o.TestsRequired))
		fmt.Fprintf(&b, "  Grand Total: Rs %s\n", utils.FormatMoney(o.GrandTotal))
	}

	if rec.EngineeringActionRequired {
		fmt.Fprintf(&b, "\nENGINEERING ACTION: %d new SKU request(s)\n", len(rec.NewProductRequests))
	}
	if rec.Brief != "" {
		fmt.Fprintf(&b, "\nBid Brief\n%s\n", rec.Brief)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
