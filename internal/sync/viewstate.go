package sync

import (
	"fmt"
	"slices"
	"sync"
)

// ViewState is the per-conversation view session state.
type ViewState string

const (
	ViewIdle           ViewState = "IDLE"
	ViewLoadingInitial ViewState = "LOADING_INITIAL"
	ViewReady          ViewState = "READY"
	ViewLoadingPage    ViewState = "LOADING_PAGE"
	ViewSending        ViewState = "SENDING"
	ViewSendFailed     ViewState = "SEND_FAILED"
)

// viewTransitions defines allowed view state transitions.
var viewTransitions = map[ViewState][]ViewState{
	ViewIdle:           {ViewLoadingInitial},
	ViewLoadingInitial: {ViewReady},
	ViewReady:          {ViewLoadingPage, ViewSending, ViewLoadingInitial},
	ViewLoadingPage:    {ViewReady},
	ViewSending:        {ViewReady, ViewSendFailed},
	ViewSendFailed:     {ViewSending, ViewReady, ViewLoadingInitial},
}

// viewRegistry tracks the view state of every conversation the client has
// interacted with. Conversations start in Idle.
type viewRegistry struct {
	mu     sync.RWMutex
	states map[string]ViewState
}

func newViewRegistry() *viewRegistry {
	return &viewRegistry{states: make(map[string]ViewState)}
}

func (r *viewRegistry) current(conversationID string) ViewState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.states[conversationID]; ok {
		return s
	}
	return ViewIdle
}

// transition attempts a validated state change.
func (r *viewRegistry) transition(conversationID string, to ViewState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.states[conversationID]
	if !ok {
		from = ViewIdle
	}
	if !slices.Contains(viewTransitions[from], to) {
		return fmt.Errorf("conversation %s: invalid view transition from %s to %s", conversationID, from, to)
	}
	r.states[conversationID] = to
	return nil
}

// revert restores a previously captured state after a failed command, so
// a rejected fetch leaves the view where it was.
func (r *viewRegistry) revert(conversationID string, to ViewState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[conversationID] = to
}
