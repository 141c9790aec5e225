package critic

import "fmt"

// Mode selects how a folder is turned into prompt context.
type Mode string

const (
	// ModeSample shuffles the folder and stops at the character budget.
	ModeSample Mode = "sample"
	// ModeFull includes every file untruncated, in name order.
	ModeFull Mode = "full"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSample, ModeFull:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q: must be %q or %q: %w", s, ModeSample, ModeFull, ErrValidation)
	}
}

// Defaults for [Settings].
const (
	DefaultModel      = "gemini-2.5-pro"
	DefaultBudget     = 50000
	DefaultPerFileCap = 5000
)

// Settings are the knobs a writer can change while the program runs.
type Settings struct {
	APIKey       string
	Model        string
	DraftDir     string
	ReferenceDir string
	Budget       int // max total characters per folder sample
	PerFileCap   int // characters kept from each file
	Mode         Mode
	Recursive    bool
}

// DefaultSettings returns Settings with the default model and budgets.
func DefaultSettings() Settings {
	return Settings{
		Model:      DefaultModel,
		Budget:     DefaultBudget,
		PerFileCap: DefaultPerFileCap,
		Mode:       ModeSample,
	}
}

// Validate checks that budgets are usable.
func (s Settings) Validate() error {
	if s.Budget < 0 {
		return fmt.Errorf("budget must be non-negative, got %d: %w", s.Budget, ErrValidation)
	}
	if s.PerFileCap < 0 {
		return fmt.Errorf("per-file cap must be non-negative, got %d: %w", s.PerFileCap, ErrValidation)
	}
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	return nil
}

func (s Settings) sampleOptions(label string) SampleOptions {
	opts := SampleOptions{
		Label:      label,
		MaxChars:   s.Budget,
		PerFileCap: s.PerFileCap,
		Mode:       s.Mode,
		Recursive:  s.Recursive,
	}
	if s.Mode == ModeFull {
		opts.MaxChars = -1
		opts.PerFileCap = 0
	}
	return opts
}
