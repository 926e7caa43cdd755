package platform

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors for registry operations.
var (
	// ErrBuilderAlreadyRegistered is returned when registering a builder for
	// a platform that already has one.
	ErrBuilderAlreadyRegistered = errors.New("builder already registered")

	// ErrInvalidPlatform is returned when registering a builder for Unknown
	// or an unrecognized platform tag.
	ErrInvalidPlatform = errors.New("invalid platform")
)

// Registry maps each buildable platform to its Builder. The platform set is
// closed and small, so dispatch is a plain lookup table; there is no plugin
// loading.
//
// Registry is populated once at startup and read-only afterwards, so it is
// safe for concurrent use without locking.
type Registry struct {
	builders map[Platform]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[Platform]Builder)}
}

// Register adds a builder keyed by its Name. It rejects Unknown and
// duplicate registrations.
func (r *Registry) Register(b Builder) error {
	name := b.Name()

	valid := false
	for _, p := range Platforms() {
		if p == name {
			valid = true
			break
		}
	}
	if !valid {
		return errors.Wrapf(ErrInvalidPlatform, "%q", name)
	}

	if _, exists := r.builders[name]; exists {
		return errors.Wrapf(ErrBuilderAlreadyRegistered, "%q", name)
	}

	r.builders[name] = b
	return nil
}

// ForPlatform returns the builder for p, if one is registered.
// Unknown never has a builder.
func (r *Registry) ForPlatform(p Platform) (Builder, bool) {
	b, ok := r.builders[p]
	return b, ok
}

// Registered returns the registered platforms in detection priority order.
func (r *Registry) Registered() []Platform {
	out := make([]Platform, 0, len(r.builders))
	for _, p := range Platforms() {
		if _, ok := r.builders[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
