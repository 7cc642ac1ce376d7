package round

import (
	"encoding/json"
	"fmt"
)

// systemPrompt keeps the model from leaking intermediate work; only the
// requested format may be produced at each stage.
const systemPrompt = "You are a creative generation and review engine that follows " +
	"instructions strictly. Hide all intermediate work and output only the " +
	"requested format for each step."

// finalFormat is the five-field template every artifact must follow.
const finalFormat = `- **Key stimulus word**: [...]
- **Trait extraction**: [...]
- **Creative mapping (logical isomorphism)**: [...]
- **Final proposal (one concrete plan)**: [...]
- **First 48h step (smallest runnable experiment)**: [...]`

func stimulusPrompt(brief string) string {
	return fmt.Sprintf(`Generate a high-entropy word bank for the core question below.
Core question: %s

Output exactly 10 words in this ratio:
- 3 concrete nouns (distinctive physical structures)
- 3 abstract concepts (philosophical or scientific terms)
- 2 specific actions (strongly dynamic verbs)
- 2 cross-domain terms (biology, architecture, military, and so on)

Output JSON only, in this shape:
{
  "nouns": [...],
  "abstracts": [...],
  "actions": [...],
  "cross": [...]
}
Do not output anything else.`, brief)
}

func candidatePrompt(brief string, words []string) string {
	wordsJSON, _ := json.Marshal(words)
	return fmt.Sprintf(`You will use random-word stimulation to generate candidate proposals
for the core question.
Core question: %s

Stimulus words (%d total):
%s

For each stimulus word generate exactly one candidate. Every candidate has:
- stimulus_word
- word_traits
- mapping
- proposal
- first_48h_experiment

Output JSON only: an array of candidate objects.
Do not output anything else.`, brief, len(words), wordsJSON)
}

func finalizePrompt(candidates []Candidate) string {
	candsJSON, _ := json.Marshal(candidates)
	return fmt.Sprintf(`Pick the single best proposal from the candidates below. It must
score well on novelty, fit, feasibility, and impact at the same time.
Output exactly one proposal and no intermediate work.

Candidates (JSON):
%s

Now output strictly in this format (once, one proposal only):
%s`, candsJSON, finalFormat)
}

func evaluatePrompt(artifact string) string {
	return fmt.Sprintf(`Strictly self-review the final proposal below. Judge whether it
satisfies all four axes at once: novelty, fit, feasibility, impact.

Final proposal:
%s

Output JSON only:
{
  "pass": true/false,
  "scores": {
    "novelty": 0-10,
    "fit": 0-10,
    "feasibility": 0-10,
    "impact": 0-10
  },
  "why": "one-sentence reason"
}
Do not output anything else.`, artifact)
}
