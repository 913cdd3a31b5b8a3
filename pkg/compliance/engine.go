package compliance

import (
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
)

// placeholders are values a reference must not resolve to for the
// 'resolved_ref' check to pass.
var placeholders = []string{"tbd", "todo", "fixme", "n/a", "na", "?", "unknown"}

// Engine applies a rule set to documents and datasets.
type Engine struct {
	rules *RuleSet
}

// NewEngine creates an Engine for a validated rule set.
func NewEngine(rules *RuleSet) *Engine {
	return &Engine{rules: rules}
}

// Evaluate applies every rule and always returns a complete report:
// evaluation never halts, and a check that breaks internally becomes
// an error row counted as a failure. The dataset may be nil, in which
// case operational rules are reported as skipped.
func (e *Engine) Evaluate(
	doc *metadata.ResolvedDocument, ds *dataset.AssembledDataset,
) *Report {
	dsID := ""
	if ds != nil {
		dsID = ds.ID
	}
	rep := newReport(dsID, e.rules.Name)

	for _, rule := range e.rules.Rules {
		if rule.IsOperational() && ds == nil {
			rep.Rows = append(rep.Rows, Row{
				Scope:    rule.Scope,
				Target:   targetName(dsID),
				RuleID:   rule.ID,
				Severity: rule.Severity,
				Result:   ResultSkipped,
				Message:  "no dataset supplied, operational check skipped",
			})
			slog.Warn("operational rule skipped without dataset",
				"rule", rule.ID)
			continue
		}
		rep.Rows = append(rep.Rows, e.applyRule(rule, doc, ds, dsID)...)
	}

	e.score(rep)
	return rep
}

// applyRule fans one rule out over the targets its scope selects.
func (e *Engine) applyRule(
	rule Rule,
	doc *metadata.ResolvedDocument,
	ds *dataset.AssembledDataset,
	dsID string,
) []Row {
	var rows []Row

	apply := func(target string, sec metadata.ResolvedSection) {
		row := Row{
			Scope:    rule.Scope,
			Target:   target,
			RuleID:   rule.ID,
			Severity: rule.Severity,
		}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					row.Result = ResultError
					row.Message = fmt.Sprintf("check broke: %v", rec)
					slog.Error("compliance check panicked",
						"rule", rule.ID, "target", target, "panic", rec)
				}
			}()
			row.Result, row.Message = e.runCheck(rule, doc, ds, sec)
		}()
		if rule.Warn && row.Result == ResultFail {
			row.Result = ResultWarning
		}
		rows = append(rows, row)
	}

	switch rule.Scope {
	case ScopeDataset:
		apply(targetName(dsID), doc.Global)
	case ScopeVariable:
		for _, id := range slices.Sorted(maps.Keys(doc.Variables)) {
			apply(id, doc.Variables[id])
		}
	case ScopeSensor:
		for _, id := range slices.Sorted(maps.Keys(doc.Sensors)) {
			apply(id, doc.Sensors[id])
		}
	case ScopePlatform:
		for _, id := range slices.Sorted(maps.Keys(doc.Platforms)) {
			apply(id, doc.Platforms[id])
		}
	}
	return rows
}

// runCheck executes one rule against one target section.
func (e *Engine) runCheck(
	rule Rule,
	doc *metadata.ResolvedDocument,
	ds *dataset.AssembledDataset,
	sec metadata.ResolvedSection,
) (Result, string) {
	switch rule.Check {
	case CheckPresence:
		return checkPresence(sec, rule.Attribute)
	case CheckURI:
		return checkURI(sec, rule.Attribute)
	case CheckUnit:
		allowed := rule.Args
		if len(allowed) == 0 {
			allowed = e.rules.AllowedUnits
		}
		return checkUnit(sec, rule.Attribute, allowed)
	case CheckCrossRef:
		return checkCrossRef(doc, sec, rule.Attribute)
	case CheckCoordinates:
		return checkCoordinates(ds, rule.Args)
	case CheckDimensions:
		return checkDimensions(ds)
	case CheckResolvedRef:
		return checkResolvedRef(doc, ds)
	default:
		return ResultError, fmt.Sprintf("unknown check %q", rule.Check)
	}
}

func attrString(sec metadata.ResolvedSection, name string) string {
	switch v := sec[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func checkPresence(sec metadata.ResolvedSection, attr string) (Result, string) {
	if attrString(sec, attr) == "" {
		return ResultFail, fmt.Sprintf("attribute %q is empty", attr)
	}
	return ResultPass, ""
}

func checkURI(sec metadata.ResolvedSection, attr string) (Result, string) {
	raw := attrString(sec, attr)
	if raw == "" {
		return ResultFail, fmt.Sprintf("attribute %q is empty", attr)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		return ResultFail, fmt.Sprintf("%q is not a valid http(s) URI", raw)
	}
	return ResultPass, ""
}

func checkUnit(
	sec metadata.ResolvedSection, attr string, allowed []string,
) (Result, string) {
	unit := attrString(sec, attr)
	if unit == "" {
		return ResultFail, fmt.Sprintf("attribute %q is empty", attr)
	}
	for _, a := range allowed {
		if strings.EqualFold(unit, a) {
			return ResultPass, ""
		}
	}
	return ResultFail, fmt.Sprintf("unit %q is not in the allowed set", unit)
}

// checkCrossRef verifies that a reference attribute points at an
// existing instance of the section its name implies.
func checkCrossRef(
	doc *metadata.ResolvedDocument,
	sec metadata.ResolvedSection,
	attr string,
) (Result, string) {
	ref := attrString(sec, attr)
	if ref == "" {
		return ResultFail, fmt.Sprintf("reference %q is empty", attr)
	}

	var pool map[string]metadata.ResolvedSection
	switch {
	case strings.HasPrefix(attr, "sensor"):
		pool = doc.Sensors
	case strings.HasPrefix(attr, "platform"):
		pool = doc.Platforms
	case strings.HasPrefix(attr, "variable"):
		pool = doc.Variables
	default:
		return ResultError, fmt.Sprintf(
			"cannot infer referenced section from attribute %q", attr,
		)
	}
	if _, ok := pool[ref]; !ok {
		return ResultFail, fmt.Sprintf("%q references missing entry %q", attr, ref)
	}
	return ResultPass, ""
}

// checkCoordinates verifies the named coordinate variables exist:
// 'time' is satisfied by a non-empty time index, anything else by a
// column of that name.
func checkCoordinates(
	ds *dataset.AssembledDataset, args []string,
) (Result, string) {
	var missing []string
	for _, name := range args {
		if strings.EqualFold(name, "time") {
			if len(ds.Index) == 0 {
				missing = append(missing, name)
			}
			continue
		}
		found := false
		for _, col := range ds.Columns {
			if strings.EqualFold(col.Name, name) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return ResultFail, fmt.Sprintf(
			"missing coordinate variables: %s", strings.Join(missing, ", "),
		)
	}
	return ResultPass, ""
}

// checkDimensions verifies every column spans the full time index.
func checkDimensions(ds *dataset.AssembledDataset) (Result, string) {
	for _, col := range ds.Columns {
		if len(col.Values) != len(ds.Index) {
			return ResultFail, fmt.Sprintf(
				"column %q has %d values for %d index entries",
				col.Name, len(col.Values), len(ds.Index),
			)
		}
	}
	return ResultPass, ""
}

// checkResolvedRef verifies every column's variable binding resolves
// to non-empty, non-placeholder metadata.
func checkResolvedRef(
	doc *metadata.ResolvedDocument, ds *dataset.AssembledDataset,
) (Result, string) {
	for _, col := range ds.Columns {
		sec, ok := doc.Variable(col.Variable)
		if !ok {
			return ResultFail, fmt.Sprintf(
				"column %q references missing variable %q",
				col.Name, col.Variable,
			)
		}
		for _, attr := range []string{"long_name", "units"} {
			v := strings.ToLower(attrString(sec, attr))
			if slices.Contains(placeholders, v) {
				return ResultFail, fmt.Sprintf(
					"variable %q has placeholder %s %q",
					col.Variable, attr, v,
				)
			}
		}
	}
	return ResultPass, ""
}

// score fills the aggregate fields. Required and optional rows are
// scored separately: per-variable ratios are averaged first so a
// many-variable dataset is not dominated by one section, then
// combined evenly with the ratio of the remaining scopes.
func (e *Engine) score(rep *Report) {
	rep.RequiredScore = scoreSeverity(rep.Rows, SeverityRequired)
	rep.OptionalScore = scoreSeverity(rep.Rows, SeverityOptional)

	rep.OperationalValid = true
	operational := make(map[string]struct{})
	for _, rule := range e.rules.Rules {
		if rule.IsOperational() {
			operational[rule.ID] = struct{}{}
		}
	}
	for _, row := range rep.Rows {
		if _, ok := operational[row.RuleID]; !ok {
			continue
		}
		if row.Result == ResultFail || row.Result == ResultError {
			rep.OperationalValid = false
		}
	}
}

func scoreSeverity(rows []Row, severity string) float64 {
	perVariable := make(map[string][2]int) // passed, total
	var datasetPassed, datasetTotal int

	for _, row := range rows {
		if row.Severity != severity || row.Result == ResultSkipped ||
			row.Result == ResultWarning {
			continue
		}
		passed := 0
		if row.Result == ResultPass {
			passed = 1
		}
		if row.Scope == ScopeVariable {
			c := perVariable[row.Target]
			perVariable[row.Target] = [2]int{c[0] + passed, c[1] + 1}
		} else {
			datasetPassed += passed
			datasetTotal++
		}
	}

	var parts []float64
	if len(perVariable) > 0 {
		var sum float64
		for _, c := range perVariable {
			sum += float64(c[0]) / float64(c[1])
		}
		parts = append(parts, sum/float64(len(perVariable)))
	}
	if datasetTotal > 0 {
		parts = append(parts, float64(datasetPassed)/float64(datasetTotal))
	}

	if len(parts) == 0 {
		return 1
	}
	var sum float64
	for _, p := range parts {
		sum += p
	}
	return sum / float64(len(parts))
}

func targetName(dsID string) string {
	if dsID == "" {
		return "dataset"
	}
	return dsID
}
