package utils

func DeRefOr[k any](input *k, def k) k {
	if input == nil {
		return def
	}
	return *input
}

// String dereferences a pointer to any string-kinded type, such as the SDK's
// enum types, returning "" for nil.
func String[k ~string](input *k) string {
	if input == nil {
		return ""
	}
	return string(*input)
}
