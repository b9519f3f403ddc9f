package filter

// ProviderFactory constructs a configured Filter from its raw options
// subtree (typically JSON), mirroring backend.Factory's
// registration-by-type-name pattern.
type ProviderFactory func(options []byte) (Filter, error)

var providerRegistry = make(map[string]ProviderFactory)

// RegisterProvider adds a ProviderFactory under name, called from a filter
// implementation's init so the pipeline can build one from
// pipeline.ExtensionConfig.Type without a type switch.
func RegisterProvider(name string, f ProviderFactory) { providerRegistry[name] = f }

// LookupProvider returns the ProviderFactory registered under name, or nil
// if none is.
func LookupProvider(name string) ProviderFactory { return providerRegistry[name] }
