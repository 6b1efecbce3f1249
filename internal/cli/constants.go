package cli

// Output formatting.
const (
	// MaxDescriptionLength is the maximum length of an add-on description to display.
	MaxDescriptionLength = 50
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
)

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
