package llmorch

import (
	"regexp"
	"strings"
)

// fencedBlockRe matches a fenced code block, capturing an optional language/heading tag and the
// body. Grounded on internal/autopoiesis/toolgen.go's extractCodeBlock, generalised from a single
// ```lang fence search to extracting every fence in a response in order.
var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\n(.*?)```")

// extractFencedBlocks returns the trimmed body of every fenced code block in text, in order.
func extractFencedBlocks(text string) []string {
	matches := fencedBlockRe.FindAllStringSubmatch(text, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, strings.TrimSpace(m[1]))
	}
	return blocks
}

// extractJSONObject extracts the first balanced-looking JSON object from text by locating the
// first '{' and the last '}'. Grounded on internal/autopoiesis/toolgen.go's extractJSON.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "{}"
	}
	return text[start : end+1]
}

// sectionHeadings are the three coder-response headings splitByHeading looks for. Code tries the
// heading-anchored split first and falls back to taking three fences in order only when it fails.
var sectionHeadings = []string{"extractor", "models", "tests"}

// splitByHeading finds the fenced block immediately following a "## <heading>" line, case
// insensitively, for each of sectionHeadings. Returns ok=false if any heading or its following
// fence is missing.
func splitByHeading(text string) (map[string]string, bool) {
	lower := strings.ToLower(text)
	out := map[string]string{}
	for _, heading := range sectionHeadings {
		idx := strings.Index(lower, "## "+heading)
		if idx == -1 {
			return nil, false
		}
		rest := text[idx:]
		blocks := extractFencedBlocks(rest)
		if len(blocks) == 0 || blocks[0] == "" {
			return nil, false
		}
		out[heading] = blocks[0]
	}
	return out, true
}
