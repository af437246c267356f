package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-cli/internal/model"
)

var leadsOut string

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export lead records",
	Long:  "Commands for listing lead records from the active store and exporting them for sales ops.",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lead records from the active store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		leads, err := initLeadStore()
		if err != nil {
			return err
		}

		records, err := leads.List(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "leads list")
		}

		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}

		formatLeadsList(os.Stdout, records)
		return nil
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export lead records to an xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		leads, err := initLeadStore()
		if err != nil {
			return err
		}

		records, err := leads.List(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "leads export")
		}

		if err := writeLeadsWorkbook(records, leadsOut); err != nil {
			return err
		}

		zap.L().Info("leads exported",
			zap.Int("records", len(records)),
			zap.String("path", leadsOut),
		)
		return nil
	},
}

func init() {
	leadsExportCmd.Flags().StringVar(&leadsOut, "out", "briefings.xlsx", "output workbook path")
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}

// formatLeadsList writes a tabular list of lead records to w.
func formatLeadsList(out io.Writer, records []model.LeadRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LEAD\tNAME\tCOMPANY\tSTATUS\tBRIEFING\tUPDATED")
	_, _ = fmt.Fprintln(w, "----\t----\t-------\t------\t--------\t-------")

	for _, r := range records {
		briefing := "no"
		if r.HasBriefing() {
			briefing = "yes"
		}
		updated := "-"
		if !r.LastUpdatedAt.IsZero() {
			updated = r.LastUpdatedAt.Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.LeadID,
			r.DisplayName,
			r.CompanyName,
			r.Status,
			briefing,
			updated,
		)
	}
	_ = w.Flush()
}

// leadSheetColumns is the column order of the exported workbook.
var leadSheetColumns = []string{"Lead ID", "Name", "Company", "Status", "Briefing", "Created", "Last Updated"}

// writeLeadsWorkbook writes records to a single-sheet workbook at path. The
// briefing column holds the serialized document so reps can read it without
// touching the store.
func writeLeadsWorkbook(records []model.LeadRecord, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "leads export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range leadSheetColumns {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.LeadID)
		row.AddCell().SetString(r.DisplayName)
		row.AddCell().SetString(r.CompanyName)
		row.AddCell().SetString(string(r.Status))
		row.AddCell().SetString(r.Briefing)
		row.AddCell().SetString(workbookTime(r.CreatedAt))
		row.AddCell().SetString(workbookTime(r.LastUpdatedAt))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "leads export: save workbook")
	}
	return nil
}

// workbookTime renders a timestamp column, empty when the backend supplies
// none (Salesforce listings carry no local timestamps).
func workbookTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
