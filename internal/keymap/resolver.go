package keymap

import (
	"fmt"
	"slices"
	"strings"
)

// Resolver maps key strings to actions. Overrides replace the keys of an
// action wholesale; a key claimed by an override is taken away from any
// other action that had it.
type Resolver struct {
	order   []Binding
	actions map[string]Action
}

// NewResolver builds a resolver from bindings with optional per-action key
// overrides. "space" is accepted as an alias for " ".
func NewResolver(bindings []Binding, overrides map[Action][]string) *Resolver {
	r := &Resolver{actions: make(map[string]Action)}

	claimed := make(map[string]bool)
	for _, keys := range overrides {
		for _, k := range keys {
			claimed[parseKey(k)] = true
		}
	}

	for _, b := range bindings {
		var keys []string
		if custom, ok := overrides[b.Action]; ok {
			for _, k := range custom {
				keys = append(keys, parseKey(k))
			}
		} else {
			keys = slices.DeleteFunc(slices.Clone(b.Keys), func(k string) bool { return claimed[k] })
		}
		for _, k := range keys {
			r.actions[k] = b.Action
		}
		b.Keys = keys
		r.order = append(r.order, b)
	}
	return r
}

// Default returns a resolver for All without overrides.
func Default() *Resolver {
	return NewResolver(All, nil)
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.actions[key]
}

// KeysFor returns the keys bound to an action in binding order, without
// duplicates.
func (r *Resolver) KeysFor(action Action) []string {
	var keys []string
	for _, b := range r.order {
		if b.Action != action {
			continue
		}
		for _, k := range b.Keys {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// HelpLine renders the first key of each binding in the given contexts as
// "key desc · key desc". Bindings left without keys are skipped.
func (r *Resolver) HelpLine(contexts ...string) string {
	var parts []string
	for _, c := range contexts {
		for _, b := range r.order {
			if b.Context != c || len(b.Keys) == 0 {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s", displayKey(b.Keys[0]), strings.ToLower(b.Description)))
		}
	}
	return strings.Join(parts, " · ")
}

// ParseOverrides converts config key names to actions. Unknown action names
// are reported together.
func ParseOverrides(raw map[string][]string) (map[Action][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[Action][]string, len(raw))
	var unknown []string
	for name, keys := range raw {
		a := Action(strings.ToLower(strings.TrimSpace(name)))
		if !slices.ContainsFunc(All, func(b Binding) bool { return b.Action == a }) {
			unknown = append(unknown, name)
			continue
		}
		out[a] = keys
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("unknown key actions: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

func parseKey(k string) string {
	if strings.EqualFold(k, "space") {
		return " "
	}
	return k
}
