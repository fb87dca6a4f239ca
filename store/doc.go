// Package store persists pulse groups as flat delimited text so a run can
// resume at any stage without recomputation.
//
// Each field is written to a numbered series of files
//
//	<base>_<field>1.txt, <base>_<field>2.txt, ...
//
// holding at most MaxRecordsPerFile records each. Two layouts exist:
//
//	Rows     one record per line: <id><delim><v1><delim><v2>...
//	Columns  a header line of ids, then one line per sample index; short
//	         arrays are padded with their last value
//
// Loading reads every file of every requested series and joins values to
// records by id through an index built once, so fields saved at different
// stages merge into the same record.
//
// # Usage
//
//	opts := store.DefaultOptions()
//	err := store.Save(group, []string{"integral", "fit_cost"}, "out/alpha", opts)
//	...
//	g, err := store.Load("alpha", "out/alpha", []string{"integral"}, opts)
//
// Saving is destructive by default: the existing series for each field is
// deleted first. Set Append to continue the numbering instead.
//
// Malformed cells are skipped and logged through Options.Logger; they never
// abort a load. Unavailable scalars are written as NaN (fit_cost as +Inf)
// and read back as unavailable.
package store
