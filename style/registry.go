package style

// Registry assigns stable indexes to distinct styles. Index 0 is the
// default style the registry was created with. Two styles with identical
// facets always map to the same index.
//
// A Registry is owned by a single workbook writer and is not safe for
// concurrent use.
type Registry struct {
	byKey  map[string]*Style
	styles []*Style
}

// NewRegistry returns a registry whose index 0 is def. A nil def registers
// the empty style.
func NewRegistry(def *Style) *Registry {
	r := &Registry{byKey: make(map[string]*Style)}
	if def == nil {
		def = Empty()
	}
	r.Register(def)
	return r
}

// Register returns the registered copy of s, adding it when no style with
// the same facets has been seen. A nil style resolves to the default style.
func (r *Registry) Register(s *Style) *Style {
	if s == nil {
		return r.styles[0]
	}
	k := s.key()
	if reg, ok := r.byKey[k]; ok {
		return reg
	}
	reg := s.clone()
	reg.id = len(r.styles)
	r.styles = append(r.styles, reg)
	r.byKey[k] = reg
	return reg
}

// Default returns the style at index 0.
func (r *Registry) Default() *Style {
	return r.styles[0]
}

// ByID returns the style at index id, or nil when out of range.
func (r *Registry) ByID(id int) *Style {
	if id < 0 || id >= len(r.styles) {
		return nil
	}
	return r.styles[id]
}

// Styles returns the registered styles in index order.
func (r *Registry) Styles() []*Style {
	out := make([]*Style, len(r.styles))
	copy(out, r.styles)
	return out
}

// Len returns the number of registered styles.
func (r *Registry) Len() int {
	return len(r.styles)
}
