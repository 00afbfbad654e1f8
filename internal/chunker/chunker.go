// Package chunker splits extracted document text into overlapping fixed-size
// segments suitable for embedding and retrieval.
package chunker

import "strings"

const lookBackDivisor = 10

// Split cuts content into chunks of at most size characters where every
// consecutive pair of chunks shares exactly overlap characters. The window
// end prefers a separator or space found within the last tenth of the
// window so chunks tend to break on word boundaries; the shared-overlap
// guarantee holds either way because the next window starts at end-overlap.
// The last chunk may be shorter than size.
func Split(content string, size, overlap int, separator string) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	if len(content) == 0 {
		return nil
	}
	if len(content) <= size {
		return []string{content}
	}

	var chunks []string
	start := 0
	for start < len(content) {
		end := min(start+size, len(content))
		if end < len(content) {
			end = breakPoint(content, start, end, separator)
		}
		chunks = append(chunks, content[start:end])
		if end >= len(content) {
			break
		}
		next := end - overlap
		if next <= start {
			// A shortened window plus a large overlap would walk backwards.
			next = end
		}
		start = next
	}
	return chunks
}

// breakPoint looks backwards from end for a separator or whitespace within
// the last tenth of the window. Returns end unchanged if none is found.
func breakPoint(content string, start, end int, separator string) int {
	lookBack := min((end-start)/lookBackDivisor, end-start-1)
	window := content[end-lookBack : end]
	if separator != "" {
		if i := strings.LastIndex(window, separator); i >= 0 {
			return end - lookBack + i + len(separator)
		}
	}
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == ' ' || window[i] == '\n' {
			return end - lookBack + i + 1
		}
	}
	return end
}
