package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"budgetbook/internal/core"
)

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

const (
	KindPattern    InsightKind = "pattern"
	KindAnomaly    InsightKind = "anomaly"
	KindSuggestion InsightKind = "suggestion"
	KindForecast   InsightKind = "forecast"
)

type (
	Severity    string
	InsightKind string

	// Insight is a derived, non-authoritative advisory observation. It
	// never mutates stored data.
	Insight struct {
		Kind        InsightKind `json:"kind"`
		Severity    Severity    `json:"severity"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Confidence  float64     `json:"confidence"`
	}
)

const (
	// Below this many expenses the pattern and anomaly analyses are
	// skipped entirely; below minExpensesForTrend the day-of-week and
	// forecast analyses are skipped too.
	minExpensesForAnalysis = 5
	minExpensesForTrend    = 10

	maxInsights = 8

	categoryGrowthThreshold = 20.0  // percent
	monthSpikeThreshold     = 30.0  // percent
	topCategoryThreshold    = 200.0 // currency units
	savingsRateTarget       = 20.0  // percent
	forecastSlopeThreshold  = 50.0  // currency units per month
	forecastElevated        = 100.0 // currency units per month
)

// GenerateInsights derives advisory observations from a tenant's entries,
// ranked by severity weight times confidence and truncated to the top 8.
func (s *LedgerService) GenerateInsights(entries []core.Entry) []Insight {
	return GenerateInsights(entries, s.now())
}

// GenerateInsights is the pure form, with an explicit reference time.
func GenerateInsights(entries []core.Entry, now time.Time) []Insight {
	expenses := expensesOf(entries)

	var insights []Insight
	if len(expenses) >= minExpensesForTrend {
		insights = append(insights, dayOfWeekPattern(expenses)...)
	}
	if len(expenses) >= minExpensesForAnalysis {
		insights = append(insights, categoryGrowth(expenses, now)...)
		insights = append(insights, amplitudeAnomaly(expenses)...)
		insights = append(insights, monthSpike(expenses, now)...)
	}
	insights = append(insights, topCategorySuggestion(expenses, now)...)
	insights = append(insights, savingsRateSuggestion(entries, now)...)
	if len(expenses) >= minExpensesForTrend {
		insights = append(insights, linearForecast(expenses)...)
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].score() > insights[j].score()
	})
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

func (i Insight) score() float64 {
	return severityWeight(i.Severity) * i.Confidence
}

func severityWeight(s Severity) float64 {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

func expensesOf(entries []core.Entry) []core.Entry {
	var out []core.Entry
	for _, e := range entries {
		if e.IsExpense() {
			out = append(out, e)
		}
	}
	return out
}

func amountOf(e core.Entry) float64 {
	v, _ := e.Magnitude().Float64()
	return v
}

// dayOfWeekPattern reports the weekday with the highest mean expense.
func dayOfWeekPattern(expenses []core.Entry) []Insight {
	var sums, counts [7]float64
	for _, e := range expenses {
		wd := e.Date.Weekday()
		sums[wd] += amountOf(e)
		counts[wd]++
	}

	best, bestMean := time.Sunday, 0.0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if counts[wd] == 0 {
			continue
		}
		if mean := sums[wd] / counts[wd]; mean > bestMean {
			best, bestMean = wd, mean
		}
	}
	if bestMean <= 0 {
		return nil
	}
	return []Insight{{
		Kind:        KindPattern,
		Severity:    SeverityLow,
		Title:       fmt.Sprintf("Spending peaks on %ss", best),
		Description: fmt.Sprintf("Your average expense on %ss is %.2f, higher than any other day of the week.", best, bestMean),
		Confidence:  0.7,
	}}
}

// categoryGrowth compares the current calendar month against the average of
// the two preceding months, per category.
func categoryGrowth(expenses []core.Entry, now time.Time) []Insight {
	recent := core.MonthWindow(now)
	prior1 := core.ShiftMonths(now, -1)
	prior2 := core.ShiftMonths(now, -2)

	recentTotals := map[string]float64{}
	priorTotals := map[string]float64{}
	for _, e := range expenses {
		switch {
		case recent.Contains(e.Date):
			recentTotals[e.Category] += amountOf(e)
		case prior1.Contains(e.Date), prior2.Contains(e.Date):
			priorTotals[e.Category] += amountOf(e)
		}
	}

	categories := make([]string, 0, len(recentTotals))
	for c := range recentTotals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var out []Insight
	for _, c := range categories {
		prior := priorTotals[c] / 2
		if prior == 0 {
			continue
		}
		growth := (recentTotals[c] - prior) / prior * 100
		if growth <= categoryGrowthThreshold {
			continue
		}
		out = append(out, Insight{
			Kind:        KindPattern,
			Severity:    SeverityMedium,
			Title:       fmt.Sprintf("%s spending is growing", c),
			Description: fmt.Sprintf("You spent %.0f%% more on %s this month than your recent average.", growth, c),
			Confidence:  0.75,
		})
	}
	return out
}

// amplitudeAnomaly flags the largest single expense exceeding two standard
// deviations above the mean magnitude.
func amplitudeAnomaly(expenses []core.Entry) []Insight {
	n := float64(len(expenses))
	var sum float64
	for _, e := range expenses {
		sum += amountOf(e)
	}
	mean := sum / n

	var variance float64
	for _, e := range expenses {
		d := amountOf(e) - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / n)
	if stddev == 0 {
		return nil
	}

	threshold := mean + 2*stddev
	var outlier *core.Entry
	var outlierAmount float64
	for i := range expenses {
		if a := amountOf(expenses[i]); a > threshold && a > outlierAmount {
			outlier, outlierAmount = &expenses[i], a
		}
	}
	if outlier == nil {
		return nil
	}
	return []Insight{{
		Kind:        KindAnomaly,
		Severity:    SeverityHigh,
		Title:       "Unusually large expense",
		Description: fmt.Sprintf("%q (%.2f) is far above your typical expense of %.2f.", outlier.Description, outlierAmount, mean),
		Confidence:  0.85,
	}}
}

// monthSpike compares the two most recent calendar months' total expenses.
func monthSpike(expenses []core.Entry, now time.Time) []Insight {
	current := core.MonthWindow(now)
	previous := core.ShiftMonths(now, -1)

	var currentTotal, previousTotal float64
	for _, e := range expenses {
		switch {
		case current.Contains(e.Date):
			currentTotal += amountOf(e)
		case previous.Contains(e.Date):
			previousTotal += amountOf(e)
		}
	}
	if previousTotal == 0 {
		return nil
	}
	increase := (currentTotal - previousTotal) / previousTotal * 100
	if increase <= monthSpikeThreshold {
		return nil
	}
	return []Insight{{
		Kind:        KindAnomaly,
		Severity:    SeverityMedium,
		Title:       "Spending spike this month",
		Description: fmt.Sprintf("Total expenses are up %.0f%% compared to last month (%.2f vs %.2f).", increase, currentTotal, previousTotal),
		Confidence:  0.8,
	}}
}

// topCategorySuggestion proposes a 10% cut on the heaviest current-month
// category once it passes a fixed threshold.
func topCategorySuggestion(expenses []core.Entry, now time.Time) []Insight {
	window := core.MonthWindow(now)
	totals := map[string]float64{}
	for _, e := range expenses {
		if window.Contains(e.Date) {
			totals[e.Category] += amountOf(e)
		}
	}

	var top string
	var topTotal float64
	for c, total := range totals {
		if total > topTotal || (total == topTotal && c < top) {
			top, topTotal = c, total
		}
	}
	if topTotal <= topCategoryThreshold {
		return nil
	}
	return []Insight{{
		Kind:        KindSuggestion,
		Severity:    SeverityLow,
		Title:       fmt.Sprintf("Trim %s spending", top),
		Description: fmt.Sprintf("%s is your biggest category this month (%.2f). A 10%% cut would save %.2f.", top, topTotal, topTotal*0.1),
		Confidence:  0.9,
	}}
}

// savingsRateSuggestion checks the current month's savings rate against the
// 20% target.
func savingsRateSuggestion(entries []core.Entry, now time.Time) []Insight {
	window := core.MonthWindow(now)
	var income, spent float64
	for _, e := range entries {
		if !window.Contains(e.Date) {
			continue
		}
		if e.IsExpense() {
			spent += amountOf(e)
		} else {
			income += amountOf(e)
		}
	}
	if income <= 0 {
		return nil
	}
	rate := (income - spent) / income * 100
	if rate >= savingsRateTarget {
		return nil
	}
	return []Insight{{
		Kind:        KindSuggestion,
		Severity:    SeverityMedium,
		Title:       "Savings rate below target",
		Description: fmt.Sprintf("You are saving %.0f%% of your income this month; aim for at least %.0f%%.", rate, savingsRateTarget),
		Confidence:  0.85,
	}}
}

// linearForecast fits an ordinary-least-squares trend over monthly expense
// totals and projects next month as lastMonth + slope.
func linearForecast(expenses []core.Entry) []Insight {
	totals := map[int]float64{}
	for _, e := range expenses {
		totals[monthKey(e.Date)] += amountOf(e)
	}
	if len(totals) < 3 {
		return nil
	}

	keys := make([]int, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	// OLS over (index, monthly total).
	n := float64(len(keys))
	var sumX, sumY, sumXY, sumXX float64
	for i, k := range keys {
		x, y := float64(i), totals[k]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	if math.Abs(slope) <= forecastSlopeThreshold {
		return nil
	}

	last := totals[keys[len(keys)-1]]
	projected := last + slope

	severity, confidence := SeverityMedium, 0.65
	if slope > forecastElevated {
		severity, confidence = SeverityHigh, 0.7
	}

	direction := "rise"
	if slope < 0 {
		direction = "fall"
	}
	return []Insight{{
		Kind:        KindForecast,
		Severity:    severity,
		Title:       fmt.Sprintf("Expenses trending to %s", direction),
		Description: fmt.Sprintf("At the current trend (%+.2f/month), next month's expenses project to %.2f.", slope, projected),
		Confidence:  confidence,
	}}
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
