package model

// ContactDiff describes how the contacts of two archived runs differ.
type ContactDiff struct {
	// OldRunID and NewRunID identify the compared runs.
	OldRunID int64 `json:"old_run_id"`
	NewRunID int64 `json:"new_run_id"`

	// Added are rows whose email only appears in the new run.
	Added []CsvRow `json:"added,omitempty"`

	// Removed are rows whose email only appears in the old run.
	Removed []CsvRow `json:"removed,omitempty"`

	// Changed are emails present in both runs with a different
	// preschool, name or role.
	Changed []ContactChange `json:"changed,omitempty"`

	// Unchanged is the number of emails identical in both runs.
	Unchanged int `json:"unchanged"`
}

// ContactChange pairs the old and new row for one email.
type ContactChange struct {
	Email string `json:"email"`
	Old   CsvRow `json:"old"`
	New   CsvRow `json:"new"`
}

// CompareContacts diffs two row sets keyed by email.
// Added and Changed follow the order of newRows, Removed the order of oldRows.
func CompareContacts(oldRows, newRows []CsvRow) *ContactDiff {
	diff := &ContactDiff{}

	oldByEmail := make(map[string]CsvRow, len(oldRows))
	for _, r := range oldRows {
		if _, ok := oldByEmail[r.Email]; !ok {
			oldByEmail[r.Email] = r
		}
	}
	newEmails := make(map[string]bool, len(newRows))

	for _, r := range newRows {
		if newEmails[r.Email] {
			continue
		}
		newEmails[r.Email] = true

		old, ok := oldByEmail[r.Email]
		switch {
		case !ok:
			diff.Added = append(diff.Added, r)
		case old.Preschool != r.Preschool || old.Name != r.Name || old.Role != r.Role:
			diff.Changed = append(diff.Changed, ContactChange{Email: r.Email, Old: old, New: r})
		default:
			diff.Unchanged++
		}
	}

	seenOld := make(map[string]bool, len(oldRows))
	for _, r := range oldRows {
		if newEmails[r.Email] || seenOld[r.Email] {
			continue
		}
		seenOld[r.Email] = true
		diff.Removed = append(diff.Removed, r)
	}

	return diff
}

// HasChanges reports whether the runs differ at all.
func (d *ContactDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}
