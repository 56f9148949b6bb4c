package repositories

import (
	"regexp"
	"saferoom-locator/internal/platform/db"
)

var numberedParam = regexp.MustCompile(`\$\d+`)

// rebind rewrites Postgres-style $n placeholders for drivers that expect ?.
// Queries must number their parameters in order of appearance.
func rebind(driver, query string) string {
	if driver == db.DriverPostgres {
		return query
	}
	return numberedParam.ReplaceAllString(query, "?")
}
