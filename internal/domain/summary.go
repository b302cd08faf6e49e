package domain

// RunSummary reports the outcome of one collection run. WindowsSucceeded
// less than WindowsTotal means partial data: some windows failed to
// fetch and contributed zero records.
type RunSummary struct {
	WindowsTotal     int
	WindowsSucceeded int
	RecordsWritten   int

	// HourlyPath and DailyPath are the dataset files produced by the run.
	// DailyPath is empty when the hourly dataset ended up with no rows.
	HourlyPath string
	DailyPath  string
}
