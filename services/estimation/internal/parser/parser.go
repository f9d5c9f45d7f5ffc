package parser

import (
	"regexp"
	"strconv"
	"strings"

	"souk/services/estimation/internal/models"
)

var (
	timePattern     = regexp.MustCompile(`(\d{1,2})[:h](\d{2})`)
	distancePattern = regexp.MustCompile(`(?i)(\d+)\s*km`)
)

// Extractor turns free-text job descriptions into a JobSpec using ordered
// keyword lists and first-match patterns. It holds no mutable state and is
// safe for concurrent use.
type Extractor struct {
	cities     []string
	paxPattern *regexp.Regexp
}

func NewExtractor(vocab Vocabulary) *Extractor {
	cities := make([]string, 0, len(vocab.Cities))
	for _, city := range vocab.Cities {
		if city != "" {
			cities = append(cities, city)
		}
	}
	return &Extractor{
		cities:     cities,
		paxPattern: passengerPattern(vocab.PassengerNouns),
	}
}

var defaultExtractor = NewExtractor(DefaultVocabulary())

// ExtractJobSpec runs the default vocabulary over text.
func ExtractJobSpec(text string, category models.Category) models.JobSpec {
	return defaultExtractor.Extract(text, category)
}

// Extract never fails: anything it cannot recognise is left unset.
func (e *Extractor) Extract(text string, category models.Category) models.JobSpec {
	spec := models.JobSpec{Description: text}

	spec.Pickup, spec.Dropoff = e.extractRoute(text)

	if e.paxPattern != nil {
		if matches := e.paxPattern.FindStringSubmatch(text); len(matches) > 1 {
			if pax, ok := parseInt(matches[1]); ok {
				spec.Pax = &pax
			}
		}
	}

	spec.PreferredTime = extractTime(text)

	if category == models.CategoryTransport {
		if matches := distancePattern.FindStringSubmatch(text); len(matches) > 1 {
			if km, ok := parseInt(matches[1]); ok {
				distance := float64(km)
				spec.Km = &distance
			}
		}
	}

	return spec
}

// extractRoute walks the city list in list order, not text order. The first
// city present becomes the pickup and the next one the dropoff.
func (e *Extractor) extractRoute(text string) (pickup, dropoff string) {
	for _, city := range e.cities {
		if !strings.Contains(text, city) {
			continue
		}
		if pickup == "" {
			pickup = city
		} else if dropoff == "" {
			dropoff = city
			break
		}
	}
	return pickup, dropoff
}

// extractTime returns the first H:MM or HhMM occurrence as "H:MM". Hours and
// minutes are not range checked.
func extractTime(text string) string {
	matches := timePattern.FindStringSubmatch(text)
	if len(matches) < 3 {
		return ""
	}
	hour, ok := parseInt(matches[1])
	if !ok {
		return ""
	}
	return strconv.Itoa(hour) + ":" + matches[2]
}

func passengerPattern(nouns []string) *regexp.Regexp {
	quoted := make([]string, 0, len(nouns))
	for _, noun := range nouns {
		noun = strings.TrimSpace(noun)
		if noun != "" {
			quoted = append(quoted, regexp.QuoteMeta(noun))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(\d+)\s*(?:` + strings.Join(quoted, "|") + `)`)
}

// parseInt rejects digit runs too long for an int instead of wrapping.
func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
