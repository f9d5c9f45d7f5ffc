package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"souk/services/ingestion/internal/models"
)

const maxLineSize = 1 << 20

// ReadPostings decodes one JobPosting per line. Blank lines are skipped; a
// malformed line stops the read with its line number.
func ReadPostings(r io.Reader) ([]models.JobPosting, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var postings []models.JobPosting
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var p models.JobPosting
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !p.Valid() {
			return nil, fmt.Errorf("line %d: posting has no jobId", line)
		}
		postings = append(postings, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read postings: %w", err)
	}
	return postings, nil
}
