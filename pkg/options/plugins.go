package options

// ParsePlugins appends the identifiers listed in raw to acc, in order, and returns
// the result. Duplicates are kept.
func ParsePlugins(raw string, acc []string) []string {
	return append(acc, splitEntries(raw)...)
}
