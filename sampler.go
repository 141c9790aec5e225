package critic

// SampleOptions bound a single folder sample.
type SampleOptions struct {
	Label      string // shown in each file header
	MaxChars   int    // stop once the running total exceeds this; negative disables
	PerFileCap int    // characters kept from each file; <= 0 keeps everything
	MaxFiles   int    // <= 0 means no limit
	Mode       Mode
	Recursive  bool
}

// Sampler turns a folder into prompt context. Implementations never fail:
// a missing folder or unreadable file degrades to less (or empty) text.
type Sampler interface {
	Sample(dir string, opts SampleOptions) string
}

// Store persists a session snapshot.
type Store interface {
	Save(s Session) error
}
