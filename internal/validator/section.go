package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies which half of a migration a Section holds.
type Kind string

// Section kinds.
const (
	Up   Kind = "up"
	Down Kind = "down"
)

// doBlockStart matches the opening of a DO $$ ... $$ block on a single line.
var doBlockStart = regexp.MustCompile(`\bDO\b.*\$\$`)

// Line is one source line prepared for rule matching.
type Line struct {
	Num   int    // 1-based
	Text  string // original text
	Upper string // uppercased for case-insensitive matching
	InDo  bool   // inside a DO $$ ... $$ block, including its boundary lines
}

// Section is a pre-scanned up or down body handed to rules.
type Section struct {
	Kind  Kind
	Name  string // migration name for messages, may be empty
	Lines []Line
}

// NewSection splits sql into lines and marks the ones inside DO $$ blocks so
// rules can skip procedural-language statements.
func NewSection(kind Kind, name, sql string) *Section {
	s := &Section{Kind: kind, Name: name}

	if strings.TrimSpace(sql) == "" {
		return s
	}

	for i, text := range strings.Split(sql, "\n") {
		s.Lines = append(s.Lines, Line{
			Num:   i + 1,
			Text:  text,
			Upper: strings.ToUpper(text),
		})
	}

	markDoBlocks(s.Lines)

	return s
}

// markDoBlocks tracks $$ dollar-quote parity line by line. Boundary lines
// count as inside the block so statements sharing a line with the markers
// are not misflagged.
func markDoBlocks(lines []Line) {
	inBlock := false

	for i := range lines {
		startedInside := inBlock

		if !inBlock && doBlockStart.MatchString(lines[i].Upper) {
			lines[i].InDo = true
		}

		for range strings.Count(lines[i].Upper, "$$") {
			inBlock = !inBlock
		}

		if startedInside {
			lines[i].InDo = true
		}
	}
}

// Empty reports whether the section has no lines at all.
func (s *Section) Empty() bool { return len(s.Lines) == 0 }

// StatementTail returns the uppercased text of the statement starting at
// line index from: that line and every following line up to and including
// the first one carrying a semicolon. Lets rules peek past a line boundary
// for clauses like WHERE or ON CONFLICT.
func (s *Section) StatementTail(from int) string {
	var b strings.Builder

	for i := from; i < len(s.Lines); i++ {
		b.WriteString(s.Lines[i].Upper)
		b.WriteString("\n")

		if strings.Contains(s.Lines[i].Upper, ";") {
			break
		}
	}

	return b.String()
}

// ContainsOutsideDo reports whether any line outside a DO block matches re.
func (s *Section) ContainsOutsideDo(re *regexp.Regexp) bool {
	for _, line := range s.Lines {
		if !line.InDo && re.MatchString(line.Upper) {
			return true
		}
	}

	return false
}

// Contains reports whether any line matches re, DO blocks included.
func (s *Section) Contains(re *regexp.Regexp) bool {
	for _, line := range s.Lines {
		if re.MatchString(line.Upper) {
			return true
		}
	}

	return false
}

// Warningf builds a warning-level finding, prefixing the migration name when
// one was supplied.
func (s *Section) Warningf(line int, format string, args ...any) Warning {
	return Warning{Level: LevelWarning, Line: line, Message: s.message(format, args...)}
}

// Errorf builds an error-level finding.
func (s *Section) Errorf(line int, format string, args ...any) Warning {
	return Warning{Level: LevelError, Line: line, Message: s.message(format, args...)}
}

func (s *Section) message(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)

	if s.Name != "" {
		return fmt.Sprintf("migration %s: %s", s.Name, msg)
	}

	return msg
}
