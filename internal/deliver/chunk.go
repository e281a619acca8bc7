package deliver

// ellipsis marks a truncated caption. Three plain dots, so the marker
// costs exactly three of the caption's character budget.
const ellipsis = "..."

// ChunkText splits text into pieces of at most limit characters each,
// preferring to cut at the last newline at or before the limit. When no
// newline exists in range it hard-cuts at the limit. Counting is rune-based;
// Telegram limits are characters, not bytes.
func ChunkText(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + limit
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := end
		skip := 0
		for i := end - 1; i >= start; i-- {
			if runes[i] == '\n' {
				cut = i
				skip = 1 // drop the newline itself between chunks
				break
			}
		}
		if cut == start {
			// Chunk would be empty (leading newline); hard-cut instead.
			cut, skip = end, 0
		}
		chunks = append(chunks, string(runes[start:cut]))
		start = cut + skip
	}
	return chunks
}

// TruncateCaption fits text into the caption budget. When it does not fit,
// the caption is the first limit-3 characters plus the ellipsis marker and
// truncated is true; callers then deliver the unabridged body separately.
func TruncateCaption(text string, limit int) (caption string, truncated bool) {
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis, true
}
