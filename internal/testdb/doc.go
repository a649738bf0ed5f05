// Package testdb provides utilities for database testing.
//
// Every test gets its own SQLite file under t.TempDir(), migrated with the
// embedded schema, so tests can run in parallel without sharing state. WithTx
// adds transaction isolation on top for tests that want an automatic
// rollback.
//
// Basic usage:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
//	        users := sqlite.NewSQLiteUserStore(tx, nil)
//	        require.NoError(t, users.Ensure(context.Background(), "u1", nil))
//	    })
//	}
package testdb
