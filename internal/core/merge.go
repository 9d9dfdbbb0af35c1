package core

// MergeDaysByDate reconciles multiple physical day documents sharing
// one calendar date into a single logical day per date. The store may
// hold duplicates left behind by older clients; rendering and balance
// must see each date exactly once, with lists concatenated and
// personnel costs summed. The merged day keeps the first document's id
// so edits keep a stable target.
func MergeDaysByDate(days []Day) []Day {
	byDate := make(map[string]int)
	out := make([]Day, 0, len(days))

	for _, d := range days {
		key := d.Date.String()
		idx, seen := byDate[key]
		if !seen {
			byDate[key] = len(out)
			out = append(out, d)
			continue
		}

		merged := out[idx]
		merged.Entries = append(merged.Entries, d.Entries...)
		merged.Withdrawals = append(merged.Withdrawals, d.Withdrawals...)
		merged.Personnel = PersonnelCost{
			Scalar: merged.Personnel.Scalar.Add(d.Personnel.Scalar),
			Items:  append(merged.Personnel.Items, d.Personnel.Items...),
		}
		if d.UpdatedAt.After(merged.UpdatedAt) {
			merged.UpdatedAt = d.UpdatedAt
		}
		out[idx] = merged
	}
	return out
}
