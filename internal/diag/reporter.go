package diag

import "modgen/internal/source"

// Reporter is the minimal sink passes report into.
// Implementations: BagReporter, NopReporter, FuncReporter.
type Reporter interface {
	Report(code Code, sev Severity, subject string, pos source.Pos, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to r.
func NewReportBuilder(r Reporter, sev Severity, code Code, subject string, pos source.Pos, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, subject, pos, msg),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, subject string, pos source.Pos, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, subject, pos, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, subject string, pos source.Pos, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, subject, pos, msg)
}

// WithNote appends a note.
func (b *ReportBuilder) WithNote(pos source.Pos, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(pos, msg)
	return b
}

// Emit sends the diagnostic to the reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		d := b.diag
		b.reporter.Report(d.Code, d.Severity, d.Subject, d.Pos, d.Message, d.Notes)
	}
	b.emitted = true
}

// Diagnostic returns the accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, subject string, pos source.Pos, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Subject: subject, Pos: pos, Notes: notes,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, string, source.Pos, string, []Note) {}

// FuncReporter adapts a function; used to tee diagnostics into metrics.
type FuncReporter func(d Diagnostic)

func (f FuncReporter) Report(code Code, sev Severity, subject string, pos source.Pos, msg string, notes []Note) {
	if f == nil {
		return
	}
	f(Diagnostic{Severity: sev, Code: code, Message: msg, Subject: subject, Pos: pos, Notes: notes})
}

// MultiReporter fans out to every reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(code Code, sev Severity, subject string, pos source.Pos, msg string, notes []Note) {
	for _, r := range m {
		if r != nil {
			r.Report(code, sev, subject, pos, msg, notes)
		}
	}
}
