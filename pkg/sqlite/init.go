package sqlite

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

// DriverName is a sqlite3 driver that turns on foreign keys and a busy
// timeout for every new connection. SQLite keeps foreign_keys off per
// connection, so ON DELETE CASCADE only works through this driver.
const DriverName = "sqlite3_fk"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if _, err := conn.Exec("PRAGMA foreign_keys = ON", nil); err != nil {
				return err
			}
			_, err := conn.Exec("PRAGMA busy_timeout = 5000", nil)
			return err
		},
	})
}
