package types

type Constraint struct {
	Name    string
	Op      ConstraintOp
	Version string
	Source  string
}

type Dependency struct {
	Name        string
	Type        DependencyType
	Constraints []Constraint
	// Marker is the PEP 508 environment marker after ";", if any.
	Marker string
	// Line is the 1-based manifest line the dependency was declared on.
	// Zero when the dependency did not come from a file.
	Line int
}

// Manifest is the parsed dependency manifest. Path is informational.
type Manifest struct {
	Path         string
	Dependencies []Dependency
}

// InstalledPackage is one entry reported by a package manager after an
// install run.
type InstalledPackage struct {
	Name    string
	Version string
}
