package critic

import "strings"

// DefaultSystemPrompt casts the model as a web-novel editor who learns the
// voice of the reference texts and holds the draft to it.
const DefaultSystemPrompt = `You are a senior editor of serialized web novels in the fast, punchy style of Korean platforms such as Naver Series and KakaoPage.
You study the style reference material the writer supplies and learn its narrative rhythm, tension, and the way characters play off each other.

Rules:
1. Style consistency: every suggestion you make must match that style: quick pacing, strong imagery, intense emotion.
2. No mediocrity: when the writer's prose is lukewarm, say so bluntly and rewrite the passage with the tension of the reference material.
3. Terminology and tone: keep the reference's translated tone and proper nouns consistent in every rewritten example.`

// Section headers used by [BuildPrompt].
const (
	HeaderStyleGuide = "[Style guide] (follow these conventions):"
	HeaderReference  = "[Style reference] (learn the rhythm and tone of this writing):"
	HeaderDraft      = "[My current draft]:"
	HeaderTask       = "[Current task]:"
)

// PromptParts are the inputs of one assembled turn prompt.
type PromptParts struct {
	StyleGuide string
	Reference  string
	Draft      string
	Task       string
}

// BuildPrompt concatenates the parts in fixed order, each under its header.
// The style guide section is omitted when empty; the reference and draft
// sections are always present, even when their excerpts are empty.
func BuildPrompt(p PromptParts) string {
	var b strings.Builder
	if strings.TrimSpace(p.StyleGuide) != "" {
		b.WriteString(HeaderStyleGuide)
		b.WriteString("\n")
		b.WriteString(p.StyleGuide)
		b.WriteString("\n\n")
	}
	b.WriteString(HeaderReference)
	b.WriteString("\n")
	b.WriteString(p.Reference)
	b.WriteString("\n\n")
	b.WriteString(HeaderDraft)
	b.WriteString("\n")
	b.WriteString(p.Draft)
	b.WriteString("\n\n")
	b.WriteString(HeaderTask)
	b.WriteString("\n")
	b.WriteString(p.Task)
	return b.String()
}

// styleGuidePrompt is the fixed analytical template for style extraction.
const styleGuidePrompt = `Analyze the following excerpts of reference fiction and write a concise, practical style guide a writer can imitate.
Cover:
1. Narrative rhythm: sentence and paragraph length, scene pacing, where chapters cut.
2. Dialogue tone: register, how speakers are tagged, how much is said versus implied.
3. Inner monologue: how thoughts are marked and how often the narration enters a character's head.
4. Suspense construction: hooks, reversals, and how tension is raised and released.
Give short quoted examples from the excerpts where they help.

Excerpts:
`

// BuildStyleGuidePrompt wraps sampled reference text in the extraction
// template.
func BuildStyleGuidePrompt(excerpts string) string {
	return styleGuidePrompt + excerpts
}
