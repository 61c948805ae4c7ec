package ratingqueue

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ParseScheduleTime reads either an RFC 3339 timestamp or a natural-language
// expression such as "next friday at 9pm", relative to now. The result must
// lie in the future.
func ParseScheduleTime(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("schedule time is required")
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return checkFuture(t, now)
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(strings.ToLower(input), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse schedule time %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize time %q", input)
	}
	return checkFuture(r.Time, now)
}

func checkFuture(t, now time.Time) (time.Time, error) {
	if !t.After(now) {
		return time.Time{}, fmt.Errorf("schedule time %s is not in the future", t.Format(time.RFC3339))
	}
	return t.UTC(), nil
}
