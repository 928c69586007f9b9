// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package strata

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Interpreter implementations make themselves available by registering a
// factory from the init function of their package. Importing such a package
// is enough to make its configurations accessible by name.

// InterpreterFactory creates an Interpreter from an implementation specific
// configuration. A nil configuration selects the implementation's defaults.
type InterpreterFactory func(config any) (Interpreter, error)

type factoryRegistry struct {
	mutex     sync.Mutex
	factories map[string]InterpreterFactory
}

var interpreters = factoryRegistry{factories: map[string]InterpreterFactory{}}

func (r *factoryRegistry) register(name string, factory InterpreterFactory) error {
	key := strings.ToLower(name)
	if factory == nil {
		return fmt.Errorf("invalid initialization: cannot register nil-factory using `%s`", key)
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, found := r.factories[key]; found {
		return fmt.Errorf("invalid initialization: multiple factories registered for `%s`", key)
	}
	r.factories[key] = factory
	return nil
}

func (r *factoryRegistry) get(name string) InterpreterFactory {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.factories[strings.ToLower(name)]
}

func (r *factoryRegistry) all() map[string]InterpreterFactory {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return maps.Clone(r.factories)
}

// NewInterpreter creates an instance of the interpreter registered under the
// given case-insensitive name. At most one configuration may be passed on to
// the factory.
func NewInterpreter(name string, config ...any) (Interpreter, error) {
	if len(config) > 1 {
		return nil, fmt.Errorf("invalid configuration: too many arguments")
	}
	factory := interpreters.get(name)
	if factory == nil {
		return nil, fmt.Errorf("interpreter not found: %s", name)
	}
	var c any
	if len(config) == 1 {
		c = config[0]
	}
	return factory(c)
}

// GetInterpreterFactory returns the factory registered under the given
// case-insensitive name, or nil if there is none.
func GetInterpreterFactory(name string) InterpreterFactory {
	return interpreters.get(name)
}

// GetAllRegisteredInterpreters returns a snapshot of all registered factories.
func GetAllRegisteredInterpreters() map[string]InterpreterFactory {
	return interpreters.all()
}

// RegisteredInterpreterNames lists the names of all registered interpreters
// in ascending order.
func RegisteredInterpreterNames() []string {
	names := maps.Keys(interpreters.all())
	slices.Sort(names)
	return names
}

// RegisterInterpreterFactory makes the given factory available under the
// given name. Names are not case-sensitive and can only be bound once.
func RegisterInterpreterFactory(name string, factory InterpreterFactory) error {
	return interpreters.register(name, factory)
}

// MustRegisterInterpreterFactory is like RegisterInterpreterFactory but
// panics on errors. It is intended for package initialization code.
func MustRegisterInterpreterFactory(name string, factory InterpreterFactory) {
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		panic(err)
	}
}
