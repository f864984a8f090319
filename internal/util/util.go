package util

import "strings"

const (
	fileNameSegStart = 4
	fileNameSegEnd   = 7
)

// DocumentFileName derives the local file name for a document URL from
// the year label and segments 4-6 of the URL split on "/" (scheme and
// host count as segments). Documents of one year differ in those
// segments, so names never collide.
func DocumentFileName(year, docURL string) string {
	parts := strings.Split(docURL, "/")

	end := fileNameSegEnd
	if end > len(parts) {
		end = len(parts)
	}

	start := fileNameSegStart
	if start > end {
		start = end
	}

	return year + "-" + strings.Join(parts[start:end], "-") + ".html"
}

// YearLabel is the final path segment of a year index URL.
func YearLabel(yearURL string) string {
	parts := strings.Split(yearURL, "/")

	return parts[len(parts)-1]
}
