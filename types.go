package drda

// ColumnDescription describes one column of a result set or one bound
// parameter, the fields a database/sql-style driver would expose via
// Rows.ColumnTypes. Length serves as both display and internal size.
type ColumnDescription struct {
	Name      string
	SQLType   int32
	Length    int32
	Precision int16
	Scale     int16
	Nullable  bool
}

// pkgContext carries the package-identity fields every PKGNAMCSN in a
// session embeds: the database name, package id, consistency token, and
// package section number fixed by the dialect at connect time.
type pkgContext struct {
	database  string
	pkgid     string
	pkgcnstkn string
	pkgsn     uint16
}
