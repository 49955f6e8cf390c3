package service

import (
	"fmt"
	"strings"
	"time"

	"oneil-farm-bot/internal/domain"
)

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

var Periods = []Period{PeriodToday, PeriodWeek, PeriodMonth, PeriodAll}

var periodAliases = map[string]Period{
	"today": PeriodToday, "jour": PeriodToday, "aujourdhui": PeriodToday,
	"week": PeriodWeek, "thisweek": PeriodWeek, "semaine": PeriodWeek,
	"month": PeriodMonth, "thismonth": PeriodMonth, "mois": PeriodMonth,
	"all": PeriodAll, "alltime": PeriodAll, "tout": PeriodAll,
}

func ParsePeriod(raw string) (Period, error) {
	k := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "", "'", "").Replace(raw))
	if p, ok := periodAliases[k]; ok {
		return p, nil
	}
	return "", domain.NewValidationError("period", fmt.Sprintf("unknown period %q", raw))
}

// Label is the French name used in chat replies.
func (p Period) Label() string {
	switch p {
	case PeriodToday:
		return "Aujourd'hui"
	case PeriodWeek:
		return "Cette semaine"
	case PeriodMonth:
		return "Ce mois-ci"
	case PeriodAll:
		return "Depuis le début"
	}
	return string(p)
}

// Window returns the inclusive [start, end] range of the period in now's
// location. Today spans the whole calendar day; the other periods end at now.
func (p Period) Window(now time.Time) (time.Time, time.Time, error) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		return midnight, midnight.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	case PeriodWeek:
		return midnight.AddDate(0, 0, -int(now.Weekday())), now, nil
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), now, nil
	case PeriodAll:
		return time.Unix(0, 0).In(now.Location()), now, nil
	}
	return time.Time{}, time.Time{}, domain.NewValidationError("period", fmt.Sprintf("unknown period %q", p))
}
