package services_test

import "database/sql"

func testNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
