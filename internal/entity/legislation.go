package entity

// Category groups legislation type codes under one human-readable
// name, e.g. "Primary Legislation" owning "ukpga".
type Category struct {
	Name  string
	Types []string
}

// Document is one terminal fetch target within a year.
type Document struct {
	URL      string
	Year     string
	FileName string
}

// TypeResult summarizes one (category, type) harvest.
type TypeResult struct {
	Category  string
	TypeCode  string
	Saved     int
	Skipped   int
	ErrorURLs []string
}
