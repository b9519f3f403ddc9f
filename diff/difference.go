package diff

// Difference is an immutable finding produced by a check and possibly
// rewritten by the transform pipeline.
type Difference struct {
	code           string
	name           string
	description    string
	classification Classification
	criticality    Criticality
	justification  string
	attachments    map[string]string
}

// Code returns the difference's stable code, the identity transforms and
// reporters key off of.
func (d Difference) Code() string { return d.code }

// Name returns the difference's human-readable short name.
func (d Difference) Name() string { return d.name }

// Description returns the difference's human-readable long description.
func (d Difference) Description() string { return d.description }

// Classification returns the difference's per-dimension severities. The
// returned map is a defensive copy; callers must go through Builder to
// change it.
func (d Difference) Classification() Classification {
	out := make(Classification, len(d.classification))
	for k, v := range d.classification {
		out[k] = v
	}
	return out
}

// Criticality returns the difference's current criticality (may have been
// overridden by a transform; see Builder.WithCriticality).
func (d Difference) Criticality() Criticality { return d.criticality }

// Justification returns the optional free-form justification text.
func (d Difference) Justification() string { return d.justification }

// Attachment looks up a single attachment by key.
func (d Difference) Attachment(key string) (string, bool) {
	v, ok := d.attachments[key]
	return v, ok
}

// Attachments returns a defensive copy of the difference's full attachment
// map, used by downstream reporters.
func (d Difference) Attachments() map[string]string {
	out := make(map[string]string, len(d.attachments))
	for k, v := range d.attachments {
		out[k] = v
	}
	return out
}

// Builder constructs an immutable Difference. The zero value is not
// usable; start from NewBuilder.
type Builder struct {
	d Difference
}

// NewBuilder starts building a difference with the given stable code.
func NewBuilder(code string) *Builder {
	return &Builder{d: Difference{code: code, classification: Classification{}, attachments: map[string]string{}}}
}

func (b *Builder) Named(name string) *Builder {
	b.d.name = name
	return b
}

func (b *Builder) Described(description string) *Builder {
	b.d.description = description
	return b
}

func (b *Builder) Classify(dim Dimension, sev Severity) *Builder {
	b.d.classification[dim] = sev
	return b
}

func (b *Builder) Justify(text string) *Builder {
	b.d.justification = text
	return b
}

func (b *Builder) Attach(key, value string) *Builder {
	b.d.attachments[key] = value
	return b
}

// WithCriticality lets a transform override the post-hoc criticality
// computed from the severity mapping.
func (b *Builder) WithCriticality(c Criticality) *Builder {
	b.d.criticality = c
	return b
}

// Build finalizes the difference. If no criticality was explicitly set,
// ResolveCriticality must be applied afterwards, using the pipeline's
// severity mapping, before the difference is emitted.
func (b *Builder) Build() Difference {
	out := b.d
	out.classification = b.d.Classification()
	out.attachments = b.d.Attachments()
	return out
}

// ResolveCriticality applies mapping to d's maximum classified severity,
// returning a copy of d with Criticality set, unless d already carries an
// explicit, non-zero criticality name (a transform override always wins).
func ResolveCriticality(d Difference, mapping SeverityMapping, known map[CriticalityName]Criticality) Difference {
	if d.criticality.Name != "" {
		return d
	}
	name := mapping[d.classification.Max()]
	d.criticality = known[name]
	return d
}

// WithClassification returns a copy of d with its classification replaced
// and its criticality cleared so it is recomputed by ResolveCriticality
// unless explicitly re-set afterwards.
func WithClassification(d Difference, c Classification) Difference {
	cp := make(Classification, len(c))
	for k, v := range c {
		cp[k] = v
	}
	d.classification = cp
	d.criticality = Criticality{}
	return d
}
