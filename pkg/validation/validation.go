// Package validation collects findings produced while synthesizing and
// checking a layout.
package validation

import "fmt"

// Level names the pipeline stage a finding comes from.
type Level string

const (
	LevelRequest    Level = "request"
	LevelRelations  Level = "relations"
	LevelPlacement  Level = "placement"
	LevelLayout     Level = "layout"
	LevelCompliance Level = "compliance"
)

// Severity is set by the Report method that records a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Result is a single finding. Subject and ConflictWith hold the ids of the
// rooms, doors or relationships involved, when there are any.
type Result struct {
	Level        Level    `json:"level"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	Subject      string   `json:"subject,omitempty"`
	ActualValue  any      `json:"actual_value,omitempty"`
	Expected     string   `json:"expected,omitempty"`
	ConflictWith string   `json:"conflict_with,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// Report accumulates findings across the pipeline. A report is valid until
// the first error is recorded.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []Result `json:"errors"`
	Warnings []Result `json:"warnings"`
	Info     []Result `json:"info"`
	Summary  string   `json:"summary"`
}

// NewReport returns an empty, valid report.
func NewReport() *Report {
	r := &Report{Valid: true, Errors: []Result{}, Warnings: []Result{}, Info: []Result{}}
	r.summarize()
	return r
}

func (r *Report) add(sev Severity, res Result) {
	res.Severity = sev
	switch sev {
	case SeverityError:
		r.Errors = append(r.Errors, res)
		r.Valid = false
	case SeverityWarning:
		r.Warnings = append(r.Warnings, res)
	default:
		r.Info = append(r.Info, res)
	}
	r.summarize()
}

// AddError records an error and invalidates the report.
func (r *Report) AddError(res Result) { r.add(SeverityError, res) }

// AddWarning records a warning.
func (r *Report) AddWarning(res Result) { r.add(SeverityWarning, res) }

// AddInfo records an informational finding.
func (r *Report) AddInfo(res Result) { r.add(SeverityInfo, res) }

// Warnf records a formatted warning with no subject.
func (r *Report) Warnf(level Level, format string, args ...any) {
	r.add(SeverityWarning, Result{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Infof records a formatted info finding with no subject.
func (r *Report) Infof(level Level, format string, args ...any) {
	r.add(SeverityInfo, Result{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Merge appends other's findings. A nil report is ignored.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
	r.Valid = r.Valid && other.Valid
	r.summarize()
}

// WarningMessages returns the message of every warning, in order.
func (r *Report) WarningMessages() []string {
	msgs := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		msgs = append(msgs, w.Message)
	}
	return msgs
}

// ErrorsBySubject maps every id named by an error, as Subject or
// ConflictWith, to the messages of the errors naming it.
func (r *Report) ErrorsBySubject() map[string][]string {
	out := make(map[string][]string)
	for _, e := range r.Errors {
		for _, id := range [2]string{e.Subject, e.ConflictWith} {
			if id != "" {
				out[id] = append(out[id], e.Message)
			}
		}
	}
	return out
}

func (r *Report) summarize() {
	r.Summary = fmt.Sprintf("%s, %s, %d info",
		count(len(r.Errors), "error"), count(len(r.Warnings), "warning"), len(r.Info))
}

func count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
