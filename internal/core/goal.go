package core

import "sort"

// MonthlyGoalView is a goal with its derived saved amount.
// A period without a goal row yields a zero-valued view.
type MonthlyGoalView struct {
	Period  Period
	Target  Money
	Saved   Money
	Savings []MonthlyGoalSaving // newest first
}

// GoalProgress describes how far the savings are from the target.
type GoalProgress struct {
	Percent   float64 // clamped to [0, 100]
	Remaining Money   // target - saved, negative once exceeded
	Reached   bool
}

// NewGoalView derives the saved amount and orders savings by creation time, newest first.
// goal may be nil when the period has no goal yet.
func NewGoalView(p Period, goal *MonthlyGoal, savings []MonthlyGoalSaving) MonthlyGoalView {
	v := MonthlyGoalView{Period: p, Savings: []MonthlyGoalSaving{}}
	if goal == nil {
		return v
	}
	v.Target = goal.Target
	v.Savings = append(v.Savings, savings...)
	sort.SliceStable(v.Savings, func(i, j int) bool {
		return v.Savings[i].CreatedAt.After(v.Savings[j].CreatedAt)
	})
	for _, s := range v.Savings {
		v.Saved = v.Saved.Add(s.Amount)
	}
	return v
}

func (v MonthlyGoalView) Progress() GoalProgress {
	pct := percentOf(v.Saved, v.Target)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return GoalProgress{
		Percent:   pct,
		Remaining: v.Target.Sub(v.Saved),
		Reached:   v.Target.Cents > 0 && v.Saved.Cents >= v.Target.Cents,
	}
}
