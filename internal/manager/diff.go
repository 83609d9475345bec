package manager

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff from the result's old content to its new
// content, or "" when nothing changed.
func (r *Result) Diff(path string) string {
	if !r.Changed() {
		return ""
	}
	return Diff(path, r.Before, r.After)
}

// Diff returns a unified diff between two versions of the file at path.
func Diff(path, before, after string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (new)",
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	return text
}
