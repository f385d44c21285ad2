// Package keymap resolves key presses to command IDs per focus context.
package keymap

import "sort"

// Global is the context whose bindings apply everywhere.
const Global = "global"

// Binding maps a key to a command within a context.
type Binding struct {
	Key     string
	Command string
	Context string
}

// Registry holds default bindings plus user overrides.
type Registry struct {
	bindings  []Binding
	overrides map[string]string // key -> command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{overrides: make(map[string]string)}
}

// RegisterDefaults adds DefaultBindings to r.
func RegisterDefaults(r *Registry) {
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
}

// RegisterBinding adds a default binding.
func (r *Registry) RegisterBinding(b Binding) {
	r.bindings = append(r.bindings, b)
}

// SetUserOverride binds key to command in every context where command is
// bound. An empty command unbinds key.
func (r *Registry) SetUserOverride(key, command string) {
	r.overrides[key] = command
}

// Lookup returns the command bound to key in context. Overrides win over
// defaults; an override only applies in contexts that know its command.
func (r *Registry) Lookup(key, context string) (string, bool) {
	if cmd, ok := r.overrides[key]; ok {
		if cmd == "" {
			return "", false
		}
		if r.hasCommand(cmd, context) {
			return cmd, true
		}
	}
	for _, b := range r.bindings {
		if b.Context == context && b.Key == key {
			if r.shadowed(b) {
				continue
			}
			return b.Command, true
		}
	}
	return "", false
}

// shadowed reports whether a default binding's key was reassigned by the
// user within the binding's context.
func (r *Registry) shadowed(b Binding) bool {
	cmd, ok := r.overrides[b.Key]
	if !ok {
		return false
	}
	return cmd == "" || (cmd != b.Command && r.hasCommand(cmd, b.Context))
}

func (r *Registry) hasCommand(cmd, context string) bool {
	for _, b := range r.bindings {
		if b.Context == context && b.Command == cmd {
			return true
		}
	}
	return false
}

// BindingsForContext returns the effective bindings in context, overrides
// included, sorted by command then key.
func (r *Registry) BindingsForContext(context string) []Binding {
	var out []Binding
	for _, b := range r.bindings {
		if b.Context == context && !r.shadowed(b) {
			out = append(out, b)
		}
	}
	for key, cmd := range r.overrides {
		if cmd != "" && r.hasCommand(cmd, context) {
			out = append(out, Binding{Key: key, Command: cmd, Context: context})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Command != out[j].Command {
			return out[i].Command < out[j].Command
		}
		return out[i].Key < out[j].Key
	})
	return dedupe(out)
}

func dedupe(bs []Binding) []Binding {
	out := bs[:0]
	for i, b := range bs {
		if i > 0 && b == bs[i-1] {
			continue
		}
		out = append(out, b)
	}
	return out
}

// KeysFor returns the keys bound to command in context.
func (r *Registry) KeysFor(command, context string) []string {
	var keys []string
	for _, b := range r.BindingsForContext(context) {
		if b.Command == command {
			keys = append(keys, b.Key)
		}
	}
	return keys
}
