package router

// Renderer is the rendering collaborator's contract. For each outlet the
// router emits at most one call per navigation: Activate for a node marked
// for creation, Deactivate for a node marked for destruction, UpdateParams
// for a reused node whose values changed. Componentless nodes produce no
// calls.
//
// A renderer must not start a navigation synchronously from inside these
// callbacks; re-entry requires a new navigation record.
type Renderer interface {
	// Activate instructs the collaborator to instantiate the node's
	// component. The live node's cells carry subsequent value changes.
	Activate(route *ActivatedRoute)

	// Deactivate instructs the collaborator to destroy the instance it
	// holds for the node. Called most-specific (deepest) first.
	Deactivate(route *ActivatedRouteSnapshot)

	// UpdateParams notifies the collaborator that a reused node's
	// parameters, data or URL changed.
	UpdateParams(route *ActivatedRoute)
}

// NopRenderer ignores all instructions. It is the default when no renderer
// is configured.
type NopRenderer struct{}

// Activate implements Renderer.
func (NopRenderer) Activate(*ActivatedRoute) {}

// Deactivate implements Renderer.
func (NopRenderer) Deactivate(*ActivatedRouteSnapshot) {}

// UpdateParams implements Renderer.
func (NopRenderer) UpdateParams(*ActivatedRoute) {}
