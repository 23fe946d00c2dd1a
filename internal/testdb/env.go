package testdb

import "os"

// databaseURLVars lists the environment variables consulted for the test
// database, most specific first.
var databaseURLVars = []string{"TASKBOARD_TEST_DB_URL", "DATABASE_URL", "TASKBOARD_DATABASE_URL"}

// GetTestDatabaseURL returns the first configured test database URL, or ""
// when none is set.
func GetTestDatabaseURL() string {
	for _, name := range databaseURLVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether database integration tests should
// be skipped because no database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}
