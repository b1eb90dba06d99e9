package driver

import (
	"sort"

	"github.com/pkg/errors"
)

// A function used to open a specific backend.
type OpenFunc func() (Backend, error)

type registration struct {
	name     string
	open     OpenFunc
	priority int
}

var registry []registration

// Register adds a backend under the given name. Higher priority backends are
// preferred by OpenDefault; hardware backends should register with higher
// priority than synthetic ones.
func Register(name string, priority int, open OpenFunc) {
	registry = append(registry, registration{name, open, priority})
	sort.SliceStable(registry, func(i, j int) bool {
		return registry[i].priority > registry[j].priority
	})
}

// Open opens the named backend.
func Open(name string) (Backend, error) {
	for _, r := range registry {
		if r.name == name {
			return r.open()
		}
	}
	return nil, errors.Errorf("capture backend %q not registered", name)
}

// OpenDefault opens the first registered backend, in priority order, that
// opens successfully and reports at least one device.
func OpenDefault() (Backend, error) {
	var firstErr error
	for _, r := range registry {
		b, err := r.open()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		devs, err := b.Devices()
		if err == nil && len(devs) > 0 {
			return b, nil
		}
		b.Close()
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, errors.New("no capture backend available")
}

// Backends lists the registered backend names in priority order.
func Backends() []string {
	names := make([]string, len(registry))
	for i, r := range registry {
		names[i] = r.name
	}
	return names
}
