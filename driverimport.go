package tablesync

// Blank-import the MySQL wire-protocol driver so callers only need to import
// this package to sql.Open("mysql", ...) their source and target handles.
// Dolt speaks the same wire protocol, so the same driver serves both a plain
// MySQL/MariaDB target and a Dolt one in server mode (SPEC_FULL.md DOMAIN
// STACK). Embedded Dolt access via github.com/dolthub/driver is wired
// separately behind the cgo build tag in driverimport_cgo.go, matching the
// teacher's embedded-vs-server split (store.go / store_embedded.go).
import (
	_ "github.com/go-sql-driver/mysql"
)
