package report

import "encoding/json"

// Factory constructs a configured Reporter from its raw options subtree.
type Factory func(options json.RawMessage) (Reporter, error)

var registry = make(map[string]Factory)

// Register adds a Factory under name, called from a reporter
// implementation's init.
func Register(name string, f Factory) { registry[name] = f }

// Lookup returns the Factory registered under name, or nil if none is.
func Lookup(name string) Factory { return registry[name] }
