package figure

// ToHTML creates an HTML snippet file with a table containing the figure
// data. Extension point; not implemented yet.
func (f *Figure) ToHTML(resultDir string) error {
	return nil
}
