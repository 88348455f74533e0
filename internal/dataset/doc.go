// Package dataset turns uploaded files into immutable in-memory tables.
//
// # Formats
//
// The loader branches purely on the file name's suffix:
//
//   - .csv         parsed with encoding/csv after BOM stripping and UTF-8 repair
//   - .xls, .xlsx  parsed with excelize (first sheet, first row is the header)
//   - .json        parsed with gjson (records, columns, or row-array layouts)
//
// Any other suffix yields an [UnsupportedFormatError]. A file that cannot be
// parsed yields a [LoadError]; no partial table is ever returned.
//
// # Type inference
//
// Every column gets exactly one [ColumnType]. Text cells (CSV and Excel) are
// promoted along int → float → bool → datetime → string, choosing the first
// type every non-null cell satisfies. Integer columns containing nulls become
// float, matching the usual dataframe convention.
//
// # Immutability
//
// [Table] and [Column] expose no mutators. Projections such as [Table.Head]
// share cell storage with their source, which is safe because nothing writes
// to a table once it has been built.
package dataset
