// Package review implements the rule-checklist source checker behind the
// code_review tool. It is a line-oriented scan over a fixed set of rules
// plus custom instruction rules from configuration, not a static analyzer.
package review

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule identifiers for the built-in checklist.
const (
	RuleLineLength         = "line-length"
	RuleTrailingWhitespace = "trailing-whitespace"
	RuleTabIndent          = "tab-indent"
	RuleSnakeCaseNames     = "snake-case-names"
)

// DefaultLineLimit is the line-length threshold when none is configured.
const DefaultLineLimit = 79

// Violation is one checklist finding. Line numbers are 1-based.
type Violation struct {
	Rule    string `json:"rule"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Rule evaluates one line and returns zero or more violations for it.
type Rule interface {
	ID() string
	Check(lineNo int, line string) []Violation
}

// Checker runs an ordered rule list over line-split source text.
type Checker struct {
	rules []Rule
}

// NewChecker builds a checker with the built-in checklist at the given line
// limit (0 means DefaultLineLimit) followed by any custom rules.
func NewChecker(lineLimit int, custom ...Rule) *Checker {
	if lineLimit <= 0 {
		lineLimit = DefaultLineLimit
	}
	rules := []Rule{
		lineLengthRule{limit: lineLimit},
		trailingWhitespaceRule{},
		tabIndentRule{},
		snakeCaseRule{},
	}
	rules = append(rules, custom...)
	return &Checker{rules: rules}
}

// Check scans source and returns violations ordered by line, then by rule
// position in the checklist. A compliant source yields an empty slice.
func (c *Checker) Check(source string) []Violation {
	violations := make([]Violation, 0)
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lineNo := i + 1
		for _, rule := range c.rules {
			violations = append(violations, rule.Check(lineNo, line)...)
		}
	}
	return violations
}

type lineLengthRule struct {
	limit int
}

func (r lineLengthRule) ID() string { return RuleLineLength }

func (r lineLengthRule) Check(lineNo int, line string) []Violation {
	// Count runes, not bytes, so multi-byte text is not penalized.
	length := len([]rune(line))
	if length <= r.limit {
		return nil
	}
	return []Violation{{
		Rule:    RuleLineLength,
		Line:    lineNo,
		Message: fmt.Sprintf("line is %d characters long (limit %d)", length, r.limit),
	}}
}

type trailingWhitespaceRule struct{}

func (trailingWhitespaceRule) ID() string { return RuleTrailingWhitespace }

func (trailingWhitespaceRule) Check(lineNo int, line string) []Violation {
	if line == "" || strings.TrimRight(line, " \t") == line {
		return nil
	}
	return []Violation{{
		Rule:    RuleTrailingWhitespace,
		Line:    lineNo,
		Message: "line has trailing whitespace",
	}}
}

type tabIndentRule struct{}

func (tabIndentRule) ID() string { return RuleTabIndent }

func (tabIndentRule) Check(lineNo int, line string) []Violation {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "\t") {
		return nil
	}
	return []Violation{{
		Rule:    RuleTabIndent,
		Line:    lineNo,
		Message: "line is indented with a hard tab",
	}}
}

// defPattern matches function-style definitions so the name can be checked.
// Pure text scan: the checker never parses beyond line splitting.
var defPattern = regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)`)

var snakeCase = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type snakeCaseRule struct{}

func (snakeCaseRule) ID() string { return RuleSnakeCaseNames }

func (snakeCaseRule) Check(lineNo int, line string) []Violation {
	match := defPattern.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	name := match[1]
	if snakeCase.MatchString(name) {
		return nil
	}
	return []Violation{{
		Rule:    RuleSnakeCaseNames,
		Line:    lineNo,
		Message: fmt.Sprintf("name %q is not lower snake case", name),
	}}
}

// CustomRule is an instruction rule loaded from configuration: any line
// matching Pattern violates it.
type CustomRule struct {
	RuleID  string
	Pattern *regexp.Regexp
	Message string
}

// NewCustomRule compiles a configured instruction rule.
func NewCustomRule(id, pattern, message string) (CustomRule, error) {
	if strings.TrimSpace(id) == "" {
		return CustomRule{}, fmt.Errorf("review: custom rule id is required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return CustomRule{}, fmt.Errorf("review: custom rule %q pattern: %w", id, err)
	}
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("line matches forbidden pattern %q", pattern)
	}
	return CustomRule{RuleID: id, Pattern: re, Message: message}, nil
}

func (r CustomRule) ID() string { return r.RuleID }

// Check reports a violation for any line matching the rule pattern.
func (r CustomRule) Check(lineNo int, line string) []Violation {
	if !r.Pattern.MatchString(line) {
		return nil
	}
	return []Violation{{
		Rule:    r.RuleID,
		Line:    lineNo,
		Message: r.Message,
	}}
}
