// Package breakdown reads production breakdown spreadsheets and turns them
// into an ordered shot list.
//
// Rows are sorted by shot code prefix and numeric index, then tagged with a
// canonical shot id made of the first two code segments. The same package
// writes the processed CSV that Kitsu imports, and whose column names the
// ledger package reads back.
package breakdown
