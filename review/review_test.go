package review

import (
	"strings"
	"testing"
)

func TestLineLengthViolationCitesRuleAndLine(t *testing.T) {
	c := NewChecker(0)

	source := "short line\n" + strings.Repeat("x", 85)
	violations := c.Check(source)

	if len(violations) != 1 {
		t.Fatalf("len(violations) = %d, want 1: %+v", len(violations), violations)
	}
	v := violations[0]
	if v.Rule != RuleLineLength {
		t.Fatalf("rule = %q, want %q", v.Rule, RuleLineLength)
	}
	if v.Line != 2 {
		t.Fatalf("line = %d, want 2", v.Line)
	}
	if !strings.Contains(v.Message, "85") || !strings.Contains(v.Message, "79") {
		t.Fatalf("message = %q, want length and limit named", v.Message)
	}
}

func TestCompliantSourceYieldsEmptySlice(t *testing.T) {
	c := NewChecker(0)

	violations := c.Check("def compute_total(values):\n    return sum(values)")
	if violations == nil {
		t.Fatal("Check() = nil, want empty non-nil slice")
	}
	if len(violations) != 0 {
		t.Fatalf("violations = %+v, want none", violations)
	}
}

func TestLineLengthCountsRunesNotBytes(t *testing.T) {
	c := NewChecker(10)

	// 10 two-byte runes: within the limit.
	if v := c.Check(strings.Repeat("é", 10)); len(v) != 0 {
		t.Fatalf("violations = %+v, want none", v)
	}
	if v := c.Check(strings.Repeat("é", 11)); len(v) != 1 {
		t.Fatalf("violations = %+v, want one", v)
	}
}

func TestTrailingWhitespaceAndTabIndent(t *testing.T) {
	c := NewChecker(0)

	violations := c.Check("clean\nends with space \n\tstarts with tab")
	rules := make(map[string]int)
	for _, v := range violations {
		rules[v.Rule] = v.Line
	}
	if rules[RuleTrailingWhitespace] != 2 {
		t.Fatalf("trailing-whitespace line = %d, want 2", rules[RuleTrailingWhitespace])
	}
	if rules[RuleTabIndent] != 3 {
		t.Fatalf("tab-indent line = %d, want 3", rules[RuleTabIndent])
	}
}

func TestSnakeCaseRuleFlagsCamelCaseDefs(t *testing.T) {
	c := NewChecker(0)

	violations := c.Check("def computeTotal(values):")
	if len(violations) != 1 || violations[0].Rule != RuleSnakeCaseNames {
		t.Fatalf("violations = %+v, want one snake-case finding", violations)
	}

	if v := c.Check("def compute_total(values):"); len(v) != 0 {
		t.Fatalf("violations = %+v, want none for snake case", v)
	}
}

func TestCustomRuleFromConfig(t *testing.T) {
	custom, err := NewCustomRule("no-print", `\bprint\(`, "use the logger instead of print")
	if err != nil {
		t.Fatalf("NewCustomRule() error = %v", err)
	}

	c := NewChecker(0, custom)
	violations := c.Check("x = 1\nprint(x)")
	if len(violations) != 1 {
		t.Fatalf("violations = %+v, want one", violations)
	}
	if violations[0].Rule != "no-print" || violations[0].Line != 2 {
		t.Fatalf("violation = %+v, want no-print on line 2", violations[0])
	}
}

func TestNewCustomRuleRejectsBadPatterns(t *testing.T) {
	if _, err := NewCustomRule("bad", "(", ""); err == nil {
		t.Fatal("NewCustomRule() with invalid regexp = nil, want error")
	}
	if _, err := NewCustomRule("", "x", ""); err == nil {
		t.Fatal("NewCustomRule() without id = nil, want error")
	}
}

func TestViolationsOrderedByLineThenRule(t *testing.T) {
	c := NewChecker(10)

	source := strings.Repeat("a", 11) + " \n" + strings.Repeat("b", 12)
	violations := c.Check(source)
	if len(violations) != 3 {
		t.Fatalf("len(violations) = %d, want 3: %+v", len(violations), violations)
	}
	if violations[0].Line != 1 || violations[0].Rule != RuleLineLength {
		t.Fatalf("first = %+v, want line-length on line 1", violations[0])
	}
	if violations[1].Line != 1 || violations[1].Rule != RuleTrailingWhitespace {
		t.Fatalf("second = %+v, want trailing-whitespace on line 1", violations[1])
	}
	if violations[2].Line != 2 {
		t.Fatalf("third = %+v, want line 2", violations[2])
	}
}
