package domain

// Status of a processed resource entry.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// UpsertResult holds the counts reported by a bulk replace-or-insert.
type UpsertResult struct {
	Upserted int64 // new documents created
	Matched  int64 // existing documents found by identifier
	Modified int64 // matched documents whose content changed
}

// Summary is the outcome of seeding one resource entry.
type Summary struct {
	Collection string
	Path       string
	Status     Status
	Reason     string

	Upserted int64
	Matched  int64
	Modified int64
	Inserted int64
	Ignored  int

	Err error
}

// Totals adds the counts of every summary together.
func Totals(summaries []Summary) Summary {
	var total Summary
	for _, s := range summaries {
		total.Upserted += s.Upserted
		total.Matched += s.Matched
		total.Modified += s.Modified
		total.Inserted += s.Inserted
		total.Ignored += s.Ignored
	}
	return total
}
