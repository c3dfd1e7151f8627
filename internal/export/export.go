// Package export writes field records to spreadsheets and CSV files.
package export

import (
	"github.com/joseph-ayodele/book-of-knowledge/constants"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
)

// AllDataPlaceholder fills the All_Data column when the full text lives in page dumps.
const AllDataPlaceholder = "See txt files in results folder"

type column struct {
	header string
	field  constants.Field // empty for non-field columns
	width  float64
}

var columns = []column{
	{header: "Source_File", width: 36},
	{header: "Job_Number", field: constants.JobNumber, width: 16},
	{header: "Design_Codes", field: constants.DesignCode, width: 32},
	{header: "Materials", field: constants.Materials, width: 36},
	{header: "Seismic_Resistance_System", field: constants.SeismicResistanceSystem, width: 44},
	{header: "Risk_Category", field: constants.RiskCategory, width: 14},
	{header: "Seismic_Design_Category", field: constants.SeismicDesignCategory, width: 14},
	{header: "Site_Class", field: constants.SiteClass, width: 12},
	{header: "Wind_Speed", field: constants.WindSpeed, width: 12},
	{header: "Project_Name", field: constants.ProjectName, width: 40},
	{header: "Location", field: constants.Location, width: 48},
	{header: "All_Data", width: 36},
}

// Headers returns the column headers in output order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// Row is one document in an export.
type Row struct {
	SourceFile string
	Record     fields.Record
	// AllData defaults to AllDataPlaceholder.
	AllData string
}

// Cells renders r in column order, absent fields as constants.NullValue.
func (r Row) Cells() []string {
	display := r.Record.Display()
	out := make([]string, len(columns))
	for i, c := range columns {
		switch {
		case c.field != "":
			out[i] = display[c.field]
		case c.header == "Source_File":
			out[i] = r.SourceFile
		default:
			out[i] = r.AllData
			if out[i] == "" {
				out[i] = AllDataPlaceholder
			}
		}
	}
	return out
}
