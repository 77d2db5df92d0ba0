package usecase

import (
	"fmt"
	"strings"
	"time"
)

// OddsHourlyKey builds the job_key for pull_odds_hourly: odds|hourly|YYYY-MM-DD|HH,
// bucketed in the given timezone (typically the scheduler's configured TZ).
func OddsHourlyKey(at time.Time, loc *time.Location) string {
	local := at.In(loc)
	return fmt.Sprintf("odds|hourly|%s|%02d", local.Format("2006-01-02"), local.Hour())
}

// SportFixedKey builds the job_key for a fixed-time sport model run:
// <sport>|fixed|YYYY-MM-DD|HHmm.
func SportFixedKey(sport string, at time.Time, loc *time.Location) string {
	local := at.In(loc)
	return fmt.Sprintf("%s|fixed|%s|%s", strings.ToLower(sport), local.Format("2006-01-02"), local.Format("1504"))
}

// SportTMinusKey builds the job_key for a T-minus sport model run:
// <sport>|tminus|<game_id>|<minutes>.
func SportTMinusKey(sport, gameID string, minutes int) string {
	return fmt.Sprintf("%s|tminus|%s|%d", strings.ToLower(sport), gameID, minutes)
}
