// Package command parses the slash commands typed into the prompt line.
//
// Settings commands mutate a [critic.Settings] directly through Apply. The
// rest (Clear, Style, Export, Help) carry no behavior and are dispatched by
// the UI.
package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/critic"
)

// Prefix starts every command.
const Prefix = "/"

// DefaultExportPath is used by /export without an argument.
const DefaultExportPath = "critic-export.json"

// ErrUnknown indicates an unrecognized command name.
var ErrUnknown = errors.New("unknown command")

// Command is a sealed interface representing a parsed slash command.
type Command interface {
	command()
}

// Setter is a command that changes settings. Apply returns a short notice
// for the transcript.
type Setter interface {
	Command
	Apply(s *critic.Settings) string
}

// SetKey replaces the API key.
type SetKey struct{ Key string }

// SetDraftDir points the draft sampler at Dir. Empty clears it.
type SetDraftDir struct{ Dir string }

// SetReferenceDir points the reference sampler at Dir. Empty clears it.
type SetReferenceDir struct{ Dir string }

// SetModel switches the model.
type SetModel struct{ Model string }

// SetBudget sets the per-folder character budget.
type SetBudget struct{ Budget int }

// SetMode switches between sampled and full context.
type SetMode struct{ Mode critic.Mode }

// Clear discards the conversation.
type Clear struct{}

// StyleAction selects what /style does.
type StyleAction string

const (
	StyleRegen StyleAction = "regen"
	StyleShow  StyleAction = "show"
	StyleClear StyleAction = "clear"
	StyleEdit  StyleAction = "edit"
)

// Style operates on the session's style guide.
type Style struct{ Action StyleAction }

// Export writes the transcript to Path.
type Export struct{ Path string }

// Help prints [Usage].
type Help struct{}

func (SetKey) command()          {}
func (SetDraftDir) command()     {}
func (SetReferenceDir) command() {}
func (SetModel) command()        {}
func (SetBudget) command()       {}
func (SetMode) command()         {}
func (Clear) command()           {}
func (Style) command()           {}
func (Export) command()          {}
func (Help) command()            {}

// Interface compliance checks.
var (
	_ Setter  = SetKey{}
	_ Setter  = SetDraftDir{}
	_ Setter  = SetReferenceDir{}
	_ Setter  = SetModel{}
	_ Setter  = SetBudget{}
	_ Setter  = SetMode{}
	_ Command = Clear{}
	_ Command = Style{}
	_ Command = Export{}
	_ Command = Help{}
)

// Usage lists every command.
const Usage = `Commands:
  /key <api-key>         set the API key for this run
  /draft [dir]           folder with your draft (empty clears)
  /ref [dir]             folder with style reference texts (empty clears)
  /model <id>            switch model (gemini-* or claude-*)
  /budget <n>            max characters sampled per folder
  /mode sample|full      shuffle within budget, or send every file
  /clear                 forget the conversation
  /style [regen]         extract a style guide from the reference folder
  /style show|clear|edit view, drop, or edit the style guide
  /export [path]         write messages and style guide as JSON
  /help                  show this help
Anything else is sent to the editor.`

// IsCommand reports whether input is a slash command rather than a prompt.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), Prefix)
}

// Parse parses one command line. The argument is the rest of the line after
// the command name, trimmed, so folder paths may contain spaces.
func Parse(input string) (Command, error) {
	line := strings.TrimSpace(input)
	if !strings.HasPrefix(line, Prefix) {
		return nil, fmt.Errorf("%q is not a command: %w", line, ErrUnknown)
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, Prefix), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "key":
		if arg == "" {
			return nil, usageError("/key <api-key>")
		}
		return SetKey{Key: arg}, nil
	case "draft":
		return SetDraftDir{Dir: expandHome(arg)}, nil
	case "ref":
		return SetReferenceDir{Dir: expandHome(arg)}, nil
	case "model":
		if arg == "" {
			return nil, usageError("/model <id>")
		}
		return SetModel{Model: arg}, nil
	case "budget":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, usageError("/budget <non-negative integer>")
		}
		return SetBudget{Budget: n}, nil
	case "mode":
		m, err := critic.ParseMode(arg)
		if err != nil {
			return nil, err
		}
		return SetMode{Mode: m}, nil
	case "clear":
		return Clear{}, nil
	case "style":
		switch a := StyleAction(strings.ToLower(arg)); a {
		case "":
			return Style{Action: StyleRegen}, nil
		case StyleRegen, StyleShow, StyleClear, StyleEdit:
			return Style{Action: a}, nil
		default:
			return nil, usageError("/style [regen|show|clear|edit]")
		}
	case "export":
		if arg == "" {
			arg = DefaultExportPath
		}
		return Export{Path: expandHome(arg)}, nil
	case "help", "?":
		return Help{}, nil
	default:
		return nil, fmt.Errorf("/%s: %w", name, ErrUnknown)
	}
}

func usageError(usage string) error {
	return fmt.Errorf("usage: %s: %w", usage, critic.ErrValidation)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Apply sets the key. The notice never echoes it.
func (c SetKey) Apply(s *critic.Settings) string {
	s.APIKey = c.Key
	return "API key set."
}

func (c SetDraftDir) Apply(s *critic.Settings) string {
	s.DraftDir = c.Dir
	if c.Dir == "" {
		return "Draft folder cleared."
	}
	return fmt.Sprintf("Draft folder: %s", c.Dir)
}

func (c SetReferenceDir) Apply(s *critic.Settings) string {
	s.ReferenceDir = c.Dir
	if c.Dir == "" {
		return "Reference folder cleared."
	}
	return fmt.Sprintf("Reference folder: %s", c.Dir)
}

func (c SetModel) Apply(s *critic.Settings) string {
	s.Model = c.Model
	return fmt.Sprintf("Model: %s", c.Model)
}

func (c SetBudget) Apply(s *critic.Settings) string {
	s.Budget = c.Budget
	return fmt.Sprintf("Budget: %d characters per folder", c.Budget)
}

func (c SetMode) Apply(s *critic.Settings) string {
	s.Mode = c.Mode
	return fmt.Sprintf("Mode: %s", c.Mode)
}
