// Package fabricfile loads a fabric topology — sources, cascaded matrices,
// and companion-routing groups — from a YAML file into live
// fabric.Matrix/domain.Source/group.MatrixGroup objects.
//
// The file format mirrors the domain model directly: a flat list of
// sources, a list of matrices whose inputs may reference either a source or
// another matrix's output (cascading them), and a list of named groups used
// for companion routing. Matrix inputs are resolved in dependency order so
// cascaded *fabric.MatrixOutput values exist before the matrix that takes
// them as an input is constructed; a cycle between matrices is a load-time
// error, never a runtime one.
package fabricfile

// File is the root of a fabric topology YAML document.
type File struct {
	Sources  []SourceSpec  `yaml:"sources"`
	Matrices []MatrixSpec  `yaml:"matrices"`
	Groups   []GroupSpec   `yaml:"groups"`
	Assign   []AssignSpec  `yaml:"assign"`
}

// SourceSpec declares one leaf signal.
type SourceSpec struct {
	Name string `yaml:"name"`
}

// InputSpec is one slot of a matrix's input list. Exactly one of Source or
// Matrix must be set, or the slot is left empty (an unpopulated input).
type InputSpec struct {
	Empty  bool   `yaml:"empty"`
	Source string `yaml:"source"`
	Matrix string `yaml:"matrix"`
	Output int    `yaml:"output"`
}

// MatrixSpec declares one crossbar matrix: its input list and output count.
// Driver is optional; an empty value defaults to a logging no-op driver
// identified by the matrix's own name.
type MatrixSpec struct {
	Name    string      `yaml:"name"`
	Driver  string      `yaml:"driver"`
	Outputs int         `yaml:"outputs"`
	Inputs  []InputSpec `yaml:"inputs"`
}

// GroupSpec declares one named, ordered sequence of sources for companion
// routing. A blank name means "no source at this position" and produces a
// nil slot.
type GroupSpec struct {
	Name    string   `yaml:"name"`
	Sources []string `yaml:"sources"`
}

// AssignSpec binds every source in a named group to the preferred output
// identified by (Matrix, Output), for companion routing.
type AssignSpec struct {
	Group  string `yaml:"group"`
	Matrix string `yaml:"matrix"`
	Output int    `yaml:"output"`
}
