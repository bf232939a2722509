// Package jobs holds the pure per-invocation logic of the periodic jobs.  The
// scheduling mechanism lives with the worker; these functions only compute.
package jobs

import (
	"sort"
	"time"

	"github.com/minhaarvore/arvore/internal/domain/person"
)

// BirthdaysOn returns the living persons whose birthday falls on the given
// day, ordered by id.  February 29 birthdays are observed on March 1 in
// non-leap years.
func BirthdaysOn(day time.Time, all []*person.Person) []*person.Person {
	var out []*person.Person
	for _, p := range all {
		if p.BirthDate == nil || p.DeathDate != nil {
			continue
		}
		if observedOn(*p.BirthDate, day) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Age returns the completed age in years the person turns on the given day.
func Age(birth, day time.Time) int {
	years := day.Year() - birth.Year()
	if years < 0 {
		return 0
	}
	return years
}

func observedOn(birth, day time.Time) bool {
	bm, bd := birth.Month(), birth.Day()
	if bm == time.February && bd == 29 && !isLeapYear(day.Year()) {
		return day.Month() == time.March && day.Day() == 1
	}
	return day.Month() == bm && day.Day() == bd
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
