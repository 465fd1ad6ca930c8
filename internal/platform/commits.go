package platform

import (
	"strings"
	"unicode/utf8"
)

// Conventional commit types accepted by FormatChangeReason.
const (
	CommitTypeFeat     = "feat"
	CommitTypeFix      = "fix"
	CommitTypeDocs     = "docs"
	CommitTypeStyle    = "style"
	CommitTypeRefactor = "refactor"
	CommitTypePerf     = "perf"
	CommitTypeTest     = "test"
	CommitTypeChore    = "chore"
)

// Footer marks commits written by the wiki.
const Footer = "Powered-by: Wiki"

// maxSubject keeps the commit header within git's conventional width.
const maxSubject = 72

// ChangeReason is a structured commit message for a vault change.
type ChangeReason struct {
	Type    string
	Scope   string
	Subject string
	Body    string
}

// String renders the reason as
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Powered-by: Wiki
//
// The subject is reduced to its first line and shortened so that the header
// fits in 72 characters. An empty type becomes "chore".
func (r ChangeReason) String() string {
	ctype := r.Type
	if ctype == "" {
		ctype = CommitTypeChore
	}

	header := ctype
	if r.Scope != "" {
		header += "(" + r.Scope + ")"
	}
	header += ": "
	header += shorten(firstLine(r.Subject), maxSubject-utf8.RuneCountInString(header))

	parts := []string{header}
	if body := strings.TrimSpace(r.Body); body != "" {
		parts = append(parts, body)
	}
	parts = append(parts, Footer)
	return strings.Join(parts, "\n\n")
}

// FormatChangeReason is shorthand for ChangeReason{...}.String().
func FormatChangeReason(ctype, scope, subject, body string) string {
	return ChangeReason{Type: ctype, Scope: scope, Subject: subject, Body: body}.String()
}

// AppendFooter appends the wiki footer to a free-form message unless it is
// already there.
func AppendFooter(msg string) string {
	if strings.Contains(msg, Footer) {
		return msg
	}
	return strings.TrimRight(msg, "\n") + "\n\n" + Footer
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func shorten(s string, max int) string {
	if max < 1 {
		max = 1
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
