package backup

// CompletenessThreshold is the size in bytes a backup file must exceed
// before it is treated as fully written.
const CompletenessThreshold int64 = 40000

// IsComplete reports whether size is strictly above CompletenessThreshold.
func IsComplete(size int64) bool {
	return size > CompletenessThreshold
}
