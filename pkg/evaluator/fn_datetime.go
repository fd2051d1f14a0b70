package evaluator

import (
	"context"
	"time"

	"github.com/halvorsen/jmespath/pkg/types"
)

// isoLayout formats a timestamp as ISO-8601 with a local numeric zone
// offset and no fractional seconds: 2006-01-02T15:04:05+02:00.
const isoLayout = "2006-01-02T15:04:05-07:00"

// now is resolved fresh on every call, deliberately not memoized across an
// evaluation tree: nothing in this engine's semantics requires two
// current_datetime() calls within one expression to agree.
func now() time.Time { return time.Now() }

func formatISO(t time.Time) types.Value {
	return types.NewString(t.Format(isoLayout))
}

func fnCurrentDatetime(_ context.Context, _ *Evaluator, _ *EvalContext, _ []types.Value) (types.Value, error) {
	return formatISO(now()), nil
}

func fnSecondsAgo(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(-time.Duration(args[0].Number() * float64(time.Second)))), nil
}

func fnMinutesAgo(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(-time.Duration(args[0].Number() * float64(time.Minute)))), nil
}

func fnHoursAgo(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(-time.Duration(args[0].Number() * float64(time.Hour)))), nil
}

func fnDaysAgo(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(-time.Duration(args[0].Number() * 24 * float64(time.Hour)))), nil
}

func fnWeeksAgo(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(-time.Duration(args[0].Number() * 7 * 24 * float64(time.Hour)))), nil
}

func fnSecondsFromNow(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(time.Duration(args[0].Number() * float64(time.Second)))), nil
}

func fnMinutesFromNow(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(time.Duration(args[0].Number() * float64(time.Minute)))), nil
}

func fnHoursFromNow(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(time.Duration(args[0].Number() * float64(time.Hour)))), nil
}

func fnDaysFromNow(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(time.Duration(args[0].Number() * 24 * float64(time.Hour)))), nil
}

func fnWeeksFromNow(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(now().Add(time.Duration(args[0].Number() * 7 * 24 * float64(time.Hour)))), nil
}

func fnMonthsAgo(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(addMonthsClamped(now(), -int(args[0].Number()))), nil
}

func fnYearsAgo(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(addMonthsClamped(now(), -int(args[0].Number())*12)), nil
}

func fnMonthsFromNow(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(addMonthsClamped(now(), int(args[0].Number()))), nil
}

func fnYearsFromNow(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return formatISO(addMonthsClamped(now(), int(args[0].Number())*12)), nil
}

// addMonthsClamped adds months calendar-months to t, clamping the day of
// month to the target month's last day instead of overflowing into the
// following month the way time.Time.AddDate does (e.g. Mar 31 minus one
// month lands on Feb 28/29, not Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	year := y + total/12
	monthIdx := total % 12
	if monthIdx < 0 {
		monthIdx += 12
		year--
	}
	month := time.Month(monthIdx + 1)
	if last := daysInMonth(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
