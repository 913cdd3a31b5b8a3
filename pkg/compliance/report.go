package compliance

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
)

// Result is the outcome of applying one rule to one target.
type Result string

const (
	// ResultPass means the check succeeded.
	ResultPass Result = "pass"

	// ResultFail means the check ran and the target did not satisfy it.
	ResultFail Result = "fail"

	// ResultError means the check itself broke; it counts as a failure
	// in scoring so internal defects cannot inflate compliance.
	ResultError Result = "error"

	// ResultWarning means the check did not pass on a rule marked
	// warn. Warnings are reported but carry no score and never break
	// operational validity.
	ResultWarning Result = "warning"

	// ResultSkipped means the check could not run, e.g. an operational
	// rule evaluated without a dataset. Skipped rows carry no score.
	ResultSkipped Result = "skipped"
)

// Row is one rule applied to one target.
type Row struct {
	Scope    string
	Target   string
	RuleID   string
	Severity string
	Result   Result
	Message  string
}

// Report is the immutable outcome of one evaluation run.
type Report struct {
	// ID uniquely identifies the evaluation run.
	ID string

	// Dataset is the dataset identifier, when one was available.
	Dataset string

	// RuleSet names the rule set that was applied.
	RuleSet string

	// Rows are ordered: rule order first, then target order.
	Rows []Row

	// RequiredScore and OptionalScore are in [0, 1]. Skipped and
	// warning rows are excluded; error rows count as failures.
	RequiredScore float64
	OptionalScore float64

	// OperationalValid is true when no operational check failed.
	// Warnings are permitted.
	OperationalValid bool
}

func newReport(dataset, ruleSet string) *Report {
	return &Report{
		ID:      uuid.NewString(),
		Dataset: dataset,
		RuleSet: ruleSet,
	}
}

var csvHeader = []string{
	"scope", "target", "rule_id", "severity", "result", "message",
}

// WriteCSV writes the report rows as a tab-separated table.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range r.Rows {
		rec := []string{
			row.Scope, row.Target, row.RuleID,
			row.Severity, string(row.Result), row.Message,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var aggregateHeader = []string{
	"dataset", "required_score", "optional_score", "operational",
	"failed_rules",
}

// WriteAggregate writes one summary line per report, so several
// datasets can be compared in a single tab-separated table.
func WriteAggregate(w io.Writer, reports []*Report) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(aggregateHeader); err != nil {
		return err
	}
	for _, rep := range reports {
		failed := 0
		for _, row := range rep.Rows {
			if row.Result == ResultFail || row.Result == ResultError {
				failed++
			}
		}
		rec := []string{
			rep.Dataset,
			fmt.Sprintf("%.1f%%", rep.RequiredScore*100),
			fmt.Sprintf("%.1f%%", rep.OptionalScore*100),
			strconv.FormatBool(rep.OperationalValid),
			strconv.Itoa(failed),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
