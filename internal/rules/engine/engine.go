package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/specklesystems/speckle-automate-checker/internal/model"
	"github.com/specklesystems/speckle-automate-checker/internal/rules"
)

// Issue is one recorded rule failure for one object.
type Issue struct {
	ObjectID   string         `json:"object_id"`
	RuleNumber int            `json:"rule_number"`
	Category   string         `json:"category,omitempty"`
	Message    string         `json:"message"`
	Severity   rules.Severity `json:"severity"`
}

// RuleResult summarizes one rule across the whole object list. A rule
// whose filters matched nothing is skipped, not passed.
type RuleResult struct {
	RuleNumber int  `json:"rule_number"`
	Passed     int  `json:"passed"`
	Failed     int  `json:"failed"`
	Skipped    bool `json:"skipped"`
}

// Options tunes evaluation. Workers <= 1 evaluates sequentially; higher
// values fan the object list out across a worker group.
type Options struct {
	Workers int
}

// EvaluateObject runs every rule in the set against one object: the
// filter chain gates, the check decides. Issues come back in rule order.
// The second return lists the rule numbers the object passed.
func EvaluateObject(set *rules.Set, obj model.Object) ([]Issue, []int) {
	var issues []Issue
	var passed []int
	for _, rule := range set.Rules {
		filters, check := rule.Split()
		if !passesFilters(filters, obj) {
			continue
		}
		if evalCondition(check, obj) {
			passed = append(passed, rule.Number)
			continue
		}
		issues = append(issues, Issue{
			ObjectID:   obj.ID,
			RuleNumber: rule.Number,
			Category:   Category(obj),
			Message:    rule.Message,
			Severity:   rule.Severity,
		})
	}
	return issues, passed
}

func passesFilters(filters []rules.Condition, obj model.Object) bool {
	for _, cond := range filters {
		if !evalCondition(cond, obj) {
			return false
		}
	}
	return true
}

func evalCondition(cond rules.Condition, obj model.Object) bool {
	return Eval(Resolve(obj, cond.Property), cond.Predicate, cond.Value)
}

// Category resolves the object's grouping label for reports.
func Category(obj model.Object) string {
	if v := Resolve(obj, "category"); !v.Absent() {
		return v.StringForm()
	}
	return ""
}

// Apply evaluates the rule set against every object. Objects and rules
// are read-only during evaluation, so the parallel path only has to
// partition the object list into contiguous chunks and stitch the
// per-object results back together in index order. Sequential and
// parallel runs produce identical output.
func Apply(ctx context.Context, set *rules.Set, objects []model.Object, opts Options) ([]Issue, []RuleResult, error) {
	perObject := make([][]Issue, len(objects))
	perPassed := make([][]int, len(objects))

	workers := opts.Workers
	if workers > len(objects) {
		workers = len(objects)
	}

	if workers <= 1 {
		for i := range objects {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			perObject[i], perPassed[i] = EvaluateObject(set, objects[i])
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		chunk := (len(objects) + workers - 1) / workers
		for start := 0; start < len(objects); start += chunk {
			end := min(start+chunk, len(objects))
			g.Go(func() error {
				for i := start; i < end; i++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					perObject[i], perPassed[i] = EvaluateObject(set, objects[i])
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	tallies := make(map[int]*RuleResult, len(set.Rules))
	for _, rule := range set.Rules {
		tallies[rule.Number] = &RuleResult{RuleNumber: rule.Number}
	}
	var issues []Issue
	for i := range objects {
		issues = append(issues, perObject[i]...)
		for _, n := range perPassed[i] {
			tallies[n].Passed++
		}
		for _, issue := range perObject[i] {
			tallies[issue.RuleNumber].Failed++
		}
	}

	results := make([]RuleResult, 0, len(set.Rules))
	for _, rule := range set.Rules {
		t := tallies[rule.Number]
		t.Skipped = t.Passed == 0 && t.Failed == 0
		results = append(results, *t)
	}
	return issues, results, nil
}
