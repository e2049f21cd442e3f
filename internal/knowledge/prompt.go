package knowledge

import (
	"fmt"
	"strings"

	"github.com/fiction-occupations/enricher/internal/enrichment"
)

// buildPrompt generates the protagonist/profession extraction prompt. The
// optional sections are only present when grounding material is available.
func buildPrompt(title, author string, g enrichment.Grounding) string {
	var extra strings.Builder
	if len(g.Snippets) > 0 {
		fmt.Fprintf(&extra, "\n\nWeb search results about this book, for context:\n%s", strings.Join(g.Snippets, "\n"))
	}
	if g.Summary != "" {
		fmt.Fprintf(&extra, "\n\nA detailed plot summary of the book:\n%s", g.Summary)
	}
	if g.Description != "" {
		fmt.Fprintf(&extra, "\n\nThe publisher's promotional description:\n%s", g.Description)
	}

	return fmt.Sprintf(`You are a literary scholar who has read every best-selling novel of the last decades. Use your knowledge of the book "%s" by %s to answer precisely.%s

INSTRUCTIONS:
1. Genre
   - Give the genre of the book as a single word or short phrase.

2. Protagonists
   - List only the point-of-view characters or narrators, in the order the book follows them.
   - For an ensemble cast, list every protagonist.
   - Never include supporting characters.

3. Professions
   - For each protagonist, in the same order, list their profession(s).
   - When a character changes jobs during the story, list every job in chronological order.
   - Prefer specific job titles over general ones ("Neurosurgeon", not "Doctor").
   - Personality traits and identity markers are not professions ("Kindest person" is invalid).
   - If a profession is completely unknown, answer "Unknown" instead of guessing.

4. ISCO codes
   - Map every profession to your best guess of its ISCO-08 code, in the same order as the professions.
   - Use 0 for an unknown profession and 9 when you are unsure of the mapping.

5. Love interest
   - Name the main love interest, if there is one, otherwise "None".
   - Give their profession(s) and ISCO code(s) following the same rules.

OUTPUT FORMAT:
Respond with ONLY a JSON object in the following format:

{
  "Book Title": "%s",
  "Book Author": "%s",
  "Genre": "<genre>",
  "Protagonists": ["<name1>", "<name2>"],
  "Professions": [["<profession1a>", "<profession1b>"], ["<profession2a>"]],
  "ISCO": [["<isco1a>", "<isco1b>"], ["<isco2a>"]],
  "Love Interest": "<name or None>",
  "Love Interest Profession": ["<profession or None>"],
  "Love Interest's ISCO": ["<isco or None>"]
}`, title, author, extra.String(), title, author)
}
