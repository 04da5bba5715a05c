package router

import "time"

// Stage identifies a state of the navigation state machine. A navigation
// moves through the non-terminal stages in order and finishes in exactly one
// of Succeeded, Cancelled or Errored.
type Stage int

const (
	StageCreated Stage = iota
	StageParsing
	StageApplyingRedirects
	StageMatching
	StageRunningGuards
	StageResolving
	StageActivating
	StageSucceeded
	StageCancelled
	StageErrored
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "created"
	case StageParsing:
		return "parsing"
	case StageApplyingRedirects:
		return "applying_redirects"
	case StageMatching:
		return "matching"
	case StageRunningGuards:
		return "running_guards"
	case StageResolving:
		return "resolving"
	case StageActivating:
		return "activating"
	case StageSucceeded:
		return "succeeded"
	case StageCancelled:
		return "cancelled"
	case StageErrored:
		return "errored"
	}
	return "unknown"
}

// Terminal reports whether the stage ends a navigation.
func (s Stage) Terminal() bool {
	return s == StageSucceeded || s == StageCancelled || s == StageErrored
}

// Event is one lifecycle notification. Every stage transition of a
// navigation emits exactly one event carrying the navigation id, so external
// observers can correlate all events belonging to one navigation.
type Event struct {
	// ID is the navigation record id, monotonic per router.
	ID int64

	// Stage is the stage the navigation entered.
	Stage Stage

	// URL is the requested URL text.
	URL string

	// FinalURL is the serialized, possibly redirected URL. Set from the
	// Matching stage onward.
	FinalURL string

	// Err is the failure for Errored events and, when the cancellation was
	// caused by a guard rejection or supersession, for Cancelled events.
	Err error

	// At is the emission time.
	At time.Time
}

// Observer receives lifecycle events. Observers are called synchronously in
// stage execution order; a slow observer delays the navigation.
type Observer func(Event)

func (r *Router) emit(nav *navigation, stage Stage, err error) {
	ev := Event{
		ID:       nav.id,
		Stage:    stage,
		URL:      nav.url,
		FinalURL: nav.finalURL,
		Err:      err,
		At:       time.Now(),
	}
	r.logger.Debug("navigation stage",
		"id", ev.ID, "stage", stage.String(), "url", ev.URL)
	r.obsMu.RLock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.obsMu.RUnlock()
	for _, obs := range observers {
		obs(ev)
	}
}
