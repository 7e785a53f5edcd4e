package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Parse groups ordered rule rows into a Set. A WHERE row opens a group and
// the group runs until the next WHERE row. Rows with a blank rule number
// inherit the group's number; a WHERE row with a blank number is assigned
// the next unused positive integer. Invalid rows and groups are dropped
// with a diagnostic, never aborting the parse. Parsing is pure: the same
// row sequence always yields a structurally equal Set.
func Parse(rows []Row, fallback Severity) *Set {
	if !fallback.Valid() {
		fallback = SeverityError
	}

	p := &parser{fallback: fallback, used: map[int]bool{}, nextAuto: 1}
	for _, row := range rows {
		p.consume(row)
	}
	p.flush()
	return p.finish()
}

type group struct {
	number      int
	line        int
	conditions  []Condition
	message     string
	severity    Severity
	hasSeverity bool
	rejected    bool
}

type parser struct {
	fallback Severity
	used     map[int]bool
	nextAuto int
	cur      *group
	groups   []*group
	diags    []Diagnostic
}

func (p *parser) consume(row Row) {
	if row.Blank() {
		return
	}

	logic, ok := ParseLogic(row.Logic)
	if !ok {
		p.diag(row.Line, p.currentNumber(), fmt.Sprintf("unknown logic tag %q, expected WHERE, AND, or CHECK", strings.TrimSpace(row.Logic)))
		return
	}

	if logic == LogicWhere {
		p.flush()
		p.cur = p.openGroup(row)
	}

	if p.cur == nil {
		p.diag(row.Line, 0, "condition appears before any WHERE row")
		return
	}
	if p.cur.rejected {
		return
	}

	// Message and severity belong to the group; the first non-empty cell
	// wins. Unrecognized severity text rejects the whole group.
	if msg := strings.TrimSpace(row.Message); msg != "" && p.cur.message == "" {
		p.cur.message = msg
	}
	if raw := strings.TrimSpace(row.Severity); raw != "" && !p.cur.hasSeverity {
		sev, ok := ParseSeverity(raw)
		if !ok {
			p.diag(row.Line, p.cur.number, fmt.Sprintf("rule %d rejected: unknown severity %q", p.cur.number, raw))
			p.cur.rejected = true
			return
		}
		p.cur.severity = sev
		p.cur.hasSeverity = true
	}

	predicate, ok := CanonicalPredicate(row.Predicate)
	if !ok {
		p.diag(row.Line, p.cur.number, fmt.Sprintf("unknown predicate %q", strings.TrimSpace(row.Predicate)))
		return
	}

	p.cur.conditions = append(p.cur.conditions, Condition{
		Logic:     logic,
		Property:  strings.TrimSpace(row.Property),
		Predicate: predicate,
		Value:     strings.TrimSpace(row.Value),
	})
}

func (p *parser) openGroup(row Row) *group {
	g := &group{line: row.Line}

	cell := strings.TrimSpace(row.RuleNumber)
	if cell == "" {
		for p.used[p.nextAuto] {
			p.nextAuto++
		}
		g.number = p.nextAuto
		p.nextAuto++
	} else {
		n, err := strconv.Atoi(cell)
		if err != nil || n <= 0 {
			p.diag(row.Line, 0, fmt.Sprintf("rule number %q is not a positive integer", cell))
			g.rejected = true
			return g
		}
		g.number = n
	}

	p.used[g.number] = true
	return g
}

func (p *parser) flush() {
	if p.cur != nil && !p.cur.rejected {
		p.groups = append(p.groups, p.cur)
	}
	p.cur = nil
}

func (p *parser) finish() *Set {
	// Groups sharing a rule number merge in encounter order, mirroring
	// spreadsheet grouping. Authors get a warning since it is usually a
	// numbering mistake.
	byNumber := map[int]*group{}
	var order []int
	for _, g := range p.groups {
		existing, ok := byNumber[g.number]
		if !ok {
			byNumber[g.number] = g
			order = append(order, g.number)
			continue
		}
		p.diag(g.line, g.number, fmt.Sprintf("duplicate rule number %d: conditions merged into one rule", g.number))
		existing.conditions = append(existing.conditions, g.conditions...)
		if existing.message == "" {
			existing.message = g.message
		}
		if !existing.hasSeverity && g.hasSeverity {
			existing.severity = g.severity
			existing.hasSeverity = g.hasSeverity
		}
	}

	set := &Set{}
	sort.Ints(order)
	for _, number := range order {
		if rule, ok := p.materialize(byNumber[number]); ok {
			set.Rules = append(set.Rules, rule)
		}
	}
	set.Diagnostics = p.diags
	return set
}

func (p *parser) materialize(g *group) (*Rule, bool) {
	if len(g.conditions) == 0 {
		p.diag(g.line, g.number, fmt.Sprintf("rule %d rejected: no valid conditions", g.number))
		return nil, false
	}
	if g.conditions[0].Logic != LogicWhere {
		p.diag(g.line, g.number, fmt.Sprintf("rule %d rejected: must start with a WHERE condition", g.number))
		return nil, false
	}

	checks := 0
	lastCheck := -1
	for i, c := range g.conditions {
		if c.Logic == LogicCheck {
			checks++
			lastCheck = i
		}
	}
	if checks > 1 {
		p.diag(g.line, g.number, fmt.Sprintf("rule %d rejected: multiple CHECK conditions", g.number))
		return nil, false
	}
	if checks == 1 && lastCheck != len(g.conditions)-1 {
		p.diag(g.line, g.number, fmt.Sprintf("rule %d rejected: CHECK must be the last condition", g.number))
		return nil, false
	}

	severity := g.severity
	if !g.hasSeverity {
		severity = p.fallback
	}
	message := g.message
	if message == "" {
		message = "No Message"
	}

	return &Rule{
		Number:     g.number,
		Conditions: g.conditions,
		Message:    message,
		Severity:   severity,
	}, true
}

func (p *parser) currentNumber() int {
	if p.cur == nil {
		return 0
	}
	return p.cur.number
}

func (p *parser) diag(line, rule int, message string) {
	p.diags = append(p.diags, Diagnostic{Line: line, RuleNumber: rule, Message: message})
}
