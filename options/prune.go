package options

// Prune removes keys holding nil values from m, descending into nested
// map[string]any values. The map is modified in place and returned.
// Cyclic structures are not supported; pruning one does not terminate.
func Prune(m map[string]any) map[string]any {
	for key, value := range m {
		if nested, ok := value.(map[string]any); ok {
			Prune(nested)
			continue
		}
		if value == nil {
			delete(m, key)
		}
	}
	return m
}
