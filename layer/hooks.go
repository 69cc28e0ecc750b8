package layer

import "gorgonia.org/tensor"

// PostHook observes a layer's input and output after its forward pass.
// Hooks must not modify the tensors.
type PostHook func(l Layer, in, out *tensor.Dense)

type hookEntry struct {
	id uint64
	fn PostHook
}

// Hooks is an ordered list of forward post-hooks. The zero value is ready to use.
type Hooks struct {
	next    uint64
	entries []hookEntry
}

// HookHandle removes a registered hook.
type HookHandle struct {
	hooks *Hooks
	id    uint64
}

// RegisterForwardPostHook adds fn to the end of the hook list, or to the front if first is set.
func (h *Hooks) RegisterForwardPostHook(fn PostHook, first bool) *HookHandle {
	h.next++
	e := hookEntry{id: h.next, fn: fn}
	if first {
		h.entries = append([]hookEntry{e}, h.entries...)
	} else {
		h.entries = append(h.entries, e)
	}
	return &HookHandle{hooks: h, id: e.id}
}

// Remove unregisters the hook. Removing twice is a no-op.
func (hh *HookHandle) Remove() {
	if hh == nil || hh.hooks == nil {
		return
	}
	entries := hh.hooks.entries
	for i := range entries {
		if entries[i].id == hh.id {
			hh.hooks.entries = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	hh.hooks = nil
}

// Len returns the number of registered hooks.
func (h *Hooks) Len() int {
	return len(h.entries)
}

// Run calls every hook in order.
func (h *Hooks) Run(l Layer, in, out *tensor.Dense) {
	for _, e := range h.entries {
		e.fn(l, in, out)
	}
}
