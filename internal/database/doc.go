// Package database stores finished ranking runs in SQLite.
//
// Each row of the runs table holds the parameters and headline numbers of
// one run next to the complete report as JSON, so history listings stay
// cheap while any run can still be reloaded in full. Runs are keyed by the
// absolute corpus path and by the link graph digest; the digest lets two
// runs over the same link structure be compared even after the corpus
// directory moved.
//
// The driver is modernc.org/sqlite, which needs no cgo. The database is a
// single file in the XDG data directory.
package database
