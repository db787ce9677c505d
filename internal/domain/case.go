package domain

// Case represents one render test input discovered under the test root
type Case struct {
	Path    string // Full path to the input file
	RelPath string // Path relative to the test root, used as the report key
	Name    string // Just the filename
	RefPath string // Expected reference image path (derived by convention)
}
