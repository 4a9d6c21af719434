/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"fmt"

	"gocropper/internal/geom"
	"gocropper/internal/selection"
)

// Update is delivered to registry listeners whenever a preview transform is recomputed.
type Update struct {
	Binding   Binding
	Transform Transform
}

// Registry keeps one transform per registered binding current with a selection.State.
// Previews see the selection in reported coordinates.
type Registry struct {
	state       *selection.State
	bindings    []Binding
	transforms  map[string]Transform
	listeners   []func(Update)
	unsubscribe func()
}

// NewRegistry subscribes to state; call Close to detach.
func NewRegistry(state *selection.State) *Registry {
	r := &Registry{state: state, transforms: make(map[string]Transform)}
	r.unsubscribe = state.Subscribe(func(geom.Rect) { r.refresh() })
	return r
}

// Add registers b and, when the canvas is known, computes its first transform.
func (r *Registry) Add(b Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	for _, have := range r.bindings {
		if have.Name == b.Name {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidBinding, b.Name)
		}
	}
	r.bindings = append(r.bindings, b)
	if r.state.Ready() {
		r.update(b)
	}
	return nil
}

// Remove drops the binding called name.
func (r *Registry) Remove(name string) {
	for i, b := range r.bindings {
		if b.Name == name {
			r.bindings = append(r.bindings[:i:i], r.bindings[i+1:]...)
			delete(r.transforms, name)
			return
		}
	}
}

// Bindings returns the registered bindings in registration order.
func (r *Registry) Bindings() []Binding { return append([]Binding(nil), r.bindings...) }

// Transform returns the last transform computed for name.
func (r *Registry) Transform(name string) (Transform, bool) {
	t, ok := r.transforms[name]
	return t, ok
}

// OnUpdate registers fn to receive every recomputed transform.
func (r *Registry) OnUpdate(fn func(Update)) {
	r.listeners = append(r.listeners, fn)
}

// Close detaches the registry from its selection state.
func (r *Registry) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

func (r *Registry) refresh() {
	for _, b := range r.bindings {
		r.update(b)
	}
}

func (r *Registry) update(b Binding) {
	square := r.state.AspectRatio() == 1
	t := Map(r.state.Reported(), r.state.Canvas(), square, b)
	r.transforms[b.Name] = t
	for _, fn := range r.listeners {
		fn(Update{Binding: b, Transform: t})
	}
}
