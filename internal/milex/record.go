// Package milex holds the record produced for one country-year report.
package milex

import "fmt"

// Record is the standardized expenditure report of one country for one year.
// Nil pointers mean the attribute was not found. FieldData is sparse, a
// missing key means "not reported", never zero.
type Record struct {
	Country              string             `json:"country"`
	Year                 int                `json:"year"`
	NationalCurrency     *string            `json:"national_currency"`
	UnitOfMeasure        *string            `json:"unit_of_measure"`
	TotalExpenditureAll  *float64           `json:"total_expenditure_all"`
	ExplanatoryRemarks   *string            `json:"explanatory_remarks"`
	NilReportExpenditure *string            `json:"nil_report_expenditure"`
	PageLink             string             `json:"page_link"`
	FieldData            map[string]float64 `json:"field_data"`

	// Error is only set when the page could not be fetched.
	Error string `json:"error,omitempty"`
}

// FailedRecord is the record of a page that could not be retrieved, it
// carries no extracted data.
func FailedRecord(country string, year int, pageLink string, err error) Record {
	return Record{
		Country:   country,
		Year:      year,
		PageLink:  pageLink,
		FieldData: map[string]float64{},
		Error:     err.Error(),
	}
}

// Failed reports whether the record stands for a transport failure.
func (r Record) Failed() bool {
	return r.Error != ""
}

// HasData is false for nil reports and pages without a MILEX table.
func (r Record) HasData() bool {
	return len(r.FieldData) > 0 || r.TotalExpenditureAll != nil
}

func (r Record) String() string {
	return fmt.Sprintf("%s %d", r.Country, r.Year)
}

// Status is the outcome of one country-year attempt as kept in the status log.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusNoData     Status = "no_data"
	StatusFailed     Status = "failed"
)

// Classify maps a finished record to its terminal status.
func Classify(r Record) Status {
	if r.Failed() {
		return StatusFailed
	}
	if !r.HasData() {
		return StatusNoData
	}
	return StatusSuccess
}
