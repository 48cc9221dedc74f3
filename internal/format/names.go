package format

// TruncateName shortens a person or department name to fit within
// maxWidth. If truncation is needed, an ellipsis is added.
func TruncateName(name string, maxWidth int) string {
	if len(name) <= maxWidth {
		return name
	}
	if maxWidth <= 1 {
		return name[:maxWidth]
	}
	return name[:maxWidth-1] + "…" // ellipsis character
}
