package fabricfile

import (
	"fmt"

	"fabricmux/internal/configloader"
	"fabricmux/internal/domain"
	"fabricmux/internal/driver"
	"fabricmux/internal/fabric"
	"fabricmux/internal/group"
	"fabricmux/internal/logger"
	"fabricmux/internal/registry"
)

// Topology is the live result of loading a fabric file: the constructed
// matrices, the registry every resolved source was registered in, and the
// MatrixGroup a server hands its RPC layer.
type Topology struct {
	Matrices map[string]*fabric.Matrix
	Registry *registry.Registry
	Group    *group.MatrixGroup
}

// Load reads path, validates it, and constructs the topology it describes.
func Load(path string, lgr logger.Logger) (*Topology, error) {
	var f File
	if err := configloader.LoadYAML(path, &f); err != nil {
		return nil, err
	}
	return Build(&f, lgr)
}

// Build constructs a Topology from an already-parsed File. Exposed
// separately from Load so tests can exercise the graph-resolution and
// construction logic against an in-memory File.
func Build(f *File, lgr logger.Logger) (*Topology, error) {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}

	sources, err := buildSources(f.Sources)
	if err != nil {
		return nil, err
	}

	order, err := matrixOrder(f.Matrices)
	if err != nil {
		return nil, err
	}

	specByName := make(map[string]*MatrixSpec, len(f.Matrices))
	for i := range f.Matrices {
		specByName[f.Matrices[i].Name] = &f.Matrices[i]
	}

	matrices := make(map[string]*fabric.Matrix, len(f.Matrices))
	for _, name := range order {
		spec := specByName[name]
		inputs, err := buildInputs(spec, sources, matrices)
		if err != nil {
			return nil, err
		}
		d := buildDriver(spec, lgr)
		matrices[spec.Name] = fabric.New(spec.Name, d, inputs, spec.Outputs, fabric.WithLogger(lgr))
	}

	reg := registry.New()
	for _, src := range sources {
		reg.Register(src)
	}

	groups := make(map[string][]*domain.Source, len(f.Groups))
	for _, g := range f.Groups {
		seq := make([]*domain.Source, len(g.Sources))
		for i, name := range g.Sources {
			if name == "" {
				continue
			}
			src, ok := sources[name]
			if !ok {
				return nil, fmt.Errorf("group %q: unknown source %q", g.Name, name)
			}
			seq[i] = src
		}
		groups[g.Name] = seq
	}

	assignments := make([]group.OutputAssignment, 0, len(f.Assign))
	for _, a := range f.Assign {
		mat, ok := matrices[a.Matrix]
		if !ok {
			return nil, fmt.Errorf("assign: unknown matrix %q", a.Matrix)
		}
		if a.Output < 0 || a.Output >= mat.NumOutputs() {
			return nil, fmt.Errorf("assign: matrix %q has no output %d", a.Matrix, a.Output)
		}
		if _, ok := groups[a.Group]; !ok {
			return nil, fmt.Errorf("assign: unknown group %q", a.Group)
		}
		assignments = append(assignments, group.OutputAssignment{
			Group:  a.Group,
			Output: mat.Output(a.Output),
		})
	}

	sg := group.NewSourceGroup(groups, assignments...)
	mg := group.NewMatrixGroup(sg, matrices, lgr)

	return &Topology{Matrices: matrices, Registry: reg, Group: mg}, nil
}

func buildSources(specs []SourceSpec) (map[string]*domain.Source, error) {
	sources := make(map[string]*domain.Source, len(specs))
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("source with empty name")
		}
		if _, dup := sources[s.Name]; dup {
			return nil, fmt.Errorf("duplicate source name %q", s.Name)
		}
		sources[s.Name] = domain.NewSource(s.Name)
	}
	return sources, nil
}

func buildDriver(spec *MatrixSpec, lgr logger.Logger) domain.Driver {
	switch spec.Driver {
	case "", "logging":
		return driver.NewLogging(spec.Name, nil, lgr)
	case "noop":
		return driver.NewLogging(spec.Name, nil, &logger.NopLogger{})
	default:
		return driver.NewLogging(spec.Name, nil, lgr)
	}
}

func buildInputs(spec *MatrixSpec, sources map[string]*domain.Source, matrices map[string]*fabric.Matrix) ([]fabric.Input, error) {
	inputs := make([]fabric.Input, len(spec.Inputs))
	for i, in := range spec.Inputs {
		switch {
		case in.Empty:
			inputs[i] = nil
		case in.Source != "":
			src, ok := sources[in.Source]
			if !ok {
				return nil, fmt.Errorf("matrix %q input %d: unknown source %q", spec.Name, i, in.Source)
			}
			inputs[i] = src
		case in.Matrix != "":
			upstream, ok := matrices[in.Matrix]
			if !ok {
				return nil, fmt.Errorf("matrix %q input %d: matrix %q not yet built (cycle?)", spec.Name, i, in.Matrix)
			}
			if in.Output < 0 || in.Output >= upstream.NumOutputs() {
				return nil, fmt.Errorf("matrix %q input %d: matrix %q has no output %d", spec.Name, i, in.Matrix, in.Output)
			}
			inputs[i] = upstream.Output(in.Output)
		default:
			inputs[i] = nil
		}
	}
	return inputs, nil
}

// matrixOrder returns matrix names in an order where every matrix that
// cascades another matrix's output appears after it, or an error if the
// inter-matrix references form a cycle or name a matrix that doesn't exist.
func matrixOrder(specs []MatrixSpec) ([]string, error) {
	deps := make(map[string][]string, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("matrix with empty name")
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate matrix name %q", s.Name)
		}
		seen[s.Name] = true
	}
	for _, s := range specs {
		for _, in := range s.Inputs {
			if in.Matrix != "" {
				if !seen[in.Matrix] {
					return nil, fmt.Errorf("matrix %q references unknown matrix %q", s.Name, in.Matrix)
				}
				deps[s.Name] = append(deps[s.Name], in.Matrix)
			}
		}
	}

	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(specs))
	order := make([]string, 0, len(specs))

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case grey:
			return fmt.Errorf("cycle detected involving matrix %q", name)
		}
		color[name] = grey
		for _, dep := range deps[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[name] = black
		order = append(order, name)
		return nil
	}

	for _, s := range specs {
		if err := visit(s.Name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
