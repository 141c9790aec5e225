package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/critic"
	ignore "github.com/sabhiram/go-gitignore"
)

// Interface compliance check.
var _ critic.Sampler = (*Sampler)(nil)

// Sampler reads prose folders into prompt context. It is safe for
// concurrent use.
type Sampler struct {
	mu         sync.Mutex // guards rng
	rng        *rand.Rand
	extensions []string
	onSkip     func(path string, err error)
}

// Option configures a [Sampler].
type Option func(*Sampler)

// WithRand sets the shuffle source. Without it the process-wide source is
// used and samples are not reproducible.
func WithRand(r *rand.Rand) Option {
	return func(s *Sampler) { s.rng = r }
}

// WithExtensions replaces [DefaultExtensions]. Extensions have no leading dot.
func WithExtensions(exts ...string) Option {
	return func(s *Sampler) { s.extensions = exts }
}

// WithSkipHandler registers a callback for every folder or file that could
// not be used.
func WithSkipHandler(fn func(path string, err error)) Option {
	return func(s *Sampler) { s.onSkip = fn }
}

// NewSampler creates a Sampler.
func NewSampler(opts ...Option) *Sampler {
	s := &Sampler{extensions: DefaultExtensions}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Sample returns headed excerpts of the qualifying files in dir.
//
// The running total adds each file's full length, while only the first
// PerFileCap characters are appended. The budget is checked after a file is
// appended, so the file that crosses MaxChars is still included and
// MaxChars = 0 yields exactly one file.
func (s *Sampler) Sample(dir string, opts critic.SampleOptions) string {
	if dir == "" {
		return ""
	}
	info, err := os.Stat(dir)
	if err != nil {
		s.skip(dir, err)
		return ""
	}
	if !info.IsDir() {
		s.skip(dir, fmt.Errorf("not a directory"))
		return ""
	}

	files := s.list(dir, opts.Recursive)
	if opts.Mode != critic.ModeFull {
		s.shuffle(files)
	}

	var b strings.Builder
	total, included := 0, 0
	for _, rel := range files {
		text, err := readText(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			s.skip(filepath.Join(dir, filepath.FromSlash(rel)), err)
			continue
		}
		fmt.Fprintf(&b, "\n\n--- [%s] file: %s ---\n", opts.Label, rel)
		b.WriteString(truncateRunes(text, opts.PerFileCap))
		b.WriteString("\n")

		total += utf8.RuneCountInString(text)
		included++
		if opts.MaxChars >= 0 && total > opts.MaxChars {
			break
		}
		if opts.MaxFiles > 0 && included >= opts.MaxFiles {
			break
		}
	}
	return b.String()
}

// list returns slash-separated paths relative to dir in lexical order.
func (s *Sampler) list(dir string, recursive bool) []string {
	pattern := "*.{" + strings.Join(s.extensions, ",") + "}"
	if recursive {
		pattern = "**/" + pattern
	}

	rules := s.ignoreRules(dir)

	var files []string
	err := doublestar.GlobWalk(os.DirFS(dir), pattern, func(p string, d iofs.DirEntry) error {
		if d.IsDir() || hidden(p) {
			return nil
		}
		if rules != nil && rules.MatchesPath(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		s.skip(dir, err)
	}
	sort.Strings(files)
	return files
}

func (s *Sampler) ignoreRules(dir string) *ignore.GitIgnore {
	p := filepath.Join(dir, IgnoreFile)
	rules, err := ignore.CompileIgnoreFile(p)
	if err != nil {
		if !errors.Is(err, iofs.ErrNotExist) {
			s.skip(p, err)
		}
		return nil
	}
	return rules
}

func (s *Sampler) shuffle(files []string) {
	swap := func(i, j int) { files[i], files[j] = files[j], files[i] }
	if s.rng == nil {
		rand.Shuffle(len(files), swap)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(files), swap)
}

func (s *Sampler) skip(p string, err error) {
	if s.onSkip != nil {
		s.onSkip(p, err)
	}
}

// readText reads a whole file as UTF-8 text with CRLF line endings
// normalized.
func readText(p string) (string, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrNotUTF8
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// hidden reports whether any element of the slash-separated path starts
// with a dot.
func hidden(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// truncateRunes returns the first n runes of s. n <= 0 keeps everything.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
