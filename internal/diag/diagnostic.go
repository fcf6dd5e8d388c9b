package diag

import "modgen/internal/source"

type Note struct {
	Pos source.Pos
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  string
	Pos      source.Pos
	Notes    []Note
}

func New(sev Severity, code Code, subject string, pos source.Pos, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Subject:  subject,
		Pos:      pos,
	}
}

func NewError(code Code, subject string, pos source.Pos, msg string) Diagnostic {
	return New(SevError, code, subject, pos, msg)
}

func (d Diagnostic) WithNote(pos source.Pos, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: pos, Msg: msg})
	return d
}
