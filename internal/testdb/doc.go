// Package testdb provides helpers for tests that need a real PostgreSQL
// database: connecting to DATABASE_URL, applying the embedded migrations, and
// running each test inside a transaction that is always rolled back.
//
// Tests using this package should carry the integration build tag and call
// GetTestDBWithT, which skips the test when no database is configured:
//
//	//go:build integration
//
//	func TestSomething(t *testing.T) {
//		db := testdb.GetTestDBWithT(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			// use tx
//		})
//	}
package testdb
