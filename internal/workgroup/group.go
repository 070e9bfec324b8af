// Copyright Project Contour Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package workgroup controls the lifetime of the set of long-running
// goroutines that make up a yarhs process: the data-plane accept loop, the
// management accept loop, and the signal bus. Every one of them runs until
// it either fails or the process is asked to shut down, and the first to
// exit unwinds the rest.
package workgroup

import (
	"context"
	"sync"
)

// Group manages a set of goroutines with related lifetimes. The zero value
// is ready to use.
type Group struct {
	mu sync.Mutex
	fn []func(context.Context) error
}

// Add registers fn to run in its own goroutine when Run is called. The
// context passed to fn is canceled as soon as any member of the group
// returns. Add must be called before Run.
func (g *Group) Add(fn func(context.Context) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fn = append(g.fn, fn)
}

// Run starts every registered function in its own goroutine and blocks
// until all of them have returned. The context passed to each function is
// derived from ctx and is canceled the moment the first function returns,
// so members should select on ctx.Done() and return promptly. The error
// from the first function to return is propagated to the caller; errors
// from the rest are discarded.
func (g *Group) Run(ctx context.Context) error {
	g.mu.Lock()
	fns := append([]func(context.Context) error(nil), g.fn...)
	g.mu.Unlock()

	if len(fns) == 0 {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(len(fns))

	result := make(chan error, len(fns))
	for _, fn := range fns {
		go func(fn func(context.Context) error) {
			defer wg.Done()
			result <- fn(runCtx)
		}(fn)
	}

	// cancel must run before wg.Wait: it is what makes the rest of the
	// group return. Deferred in this order so cancel fires first (defers
	// unwind LIFO).
	defer wg.Wait()
	defer cancel()
	return <-result
}
