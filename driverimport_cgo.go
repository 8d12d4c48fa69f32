//go:build cgo

package tablesync

// Embedded Dolt access (no running server required) is only available with
// CGO, exactly as in dolt/store_embedded.go. Registering the blank import
// lets a caller use database/sql's standard sql.Open("dolt", dsn) directly
// as an alternative to OpenEmbedded.
import (
	_ "github.com/dolthub/driver"
)
