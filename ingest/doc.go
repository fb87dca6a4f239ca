// Package ingest turns delimited waveform tables into pulse records.
//
// A table has a header row naming its columns; every numeric column except
// the time column becomes one pulse. Record IDs combine the column name
// (spaces replaced by underscores) and the source id, so two sources with
// the same column layout never collide.
//
// # Usage
//
//	sources, err := ingest.ReadDir("data/alpha", "run_", ".csv", ingest.DefaultTableOptions())
//	for _, src := range sources {
//		records := ingest.Records(src, ingest.DefaultOptions())
//		...
//	}
package ingest
