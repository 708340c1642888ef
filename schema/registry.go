package schema

import (
	"fmt"
	"sort"

	"github.com/arloliu/ifsf/errs"
)

// Registry maps MTIs to message descriptors.
//
// A Registry is populated once and then only read; concurrent lookups are safe,
// concurrent Register calls are not.
type Registry struct {
	byMTI map[string]*MessageDescriptor
}

// NewRegistry creates a registry holding descs.
func NewRegistry(descs ...*MessageDescriptor) (*Registry, error) {
	r := &Registry{byMTI: make(map[string]*MessageDescriptor, len(descs))}
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds d. A second descriptor for the same MTI is errs.ErrDuplicateField.
func (r *Registry) Register(d *MessageDescriptor) error {
	if d == nil {
		return fmt.Errorf("%w: nil message descriptor", errs.ErrUnsupportedFormat)
	}
	if _, exists := r.byMTI[d.MTI]; exists {
		return fmt.Errorf("%w: MTI %s already registered", errs.ErrDuplicateField, d.MTI)
	}
	r.byMTI[d.MTI] = d

	return nil
}

// Lookup returns the descriptor for mti, or errs.ErrUnknownMessageType.
func (r *Registry) Lookup(mti string) (*MessageDescriptor, error) {
	d, ok := r.byMTI[mti]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownMessageType, mti)
	}

	return d, nil
}

// MTIs returns the registered MTIs in ascending order.
func (r *Registry) MTIs() []string {
	out := make([]string, 0, len(r.byMTI))
	for mti := range r.byMTI {
		out = append(out, mti)
	}
	sort.Strings(out)

	return out
}

// Len returns the number of registered message types.
func (r *Registry) Len() int {
	return len(r.byMTI)
}
