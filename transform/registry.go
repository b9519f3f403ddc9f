package transform

import "encoding/json"

// Factory constructs a configured Transform from its raw options subtree,
// mirroring backend.Factory's registration-by-type-name pattern.
type Factory func(options json.RawMessage) (Transform, error)

var registry = make(map[string]Factory)

// Register adds a Factory under name, called from a transform
// implementation's init so the pipeline can build one from
// pipeline.ExtensionConfig.Type without a type switch.
func Register(name string, f Factory) { registry[name] = f }

// Lookup returns the Factory registered under name, or nil if none is.
func Lookup(name string) Factory { return registry[name] }
