package engine

import (
	"strconv"
	"strings"

	"github.com/Lingz450/receiptsplit/internal/models"
	"github.com/Lingz450/receiptsplit/internal/money"
)

func trim(s string) string { return strings.TrimSpace(s) }

// parseTags splits a comma-separated tag string, trimming blanks and
// keeping at most models.MaxTags entries.
func parseTags(tagsStr string) []string {
	out := []string{}
	for _, part := range strings.Split(tagsStr, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		out = append(out, tag)
		if len(out) == models.MaxTags {
			break
		}
	}
	return out
}

// parseAddressCSV splits a comma-separated address list, normalizing and
// deduplicating while preserving first-seen order.
func parseAddressCSV(input string) []string {
	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(input, ",") {
		addr := models.NormalizeAddress(part)
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}

// parseWeights parses "addr=weight,addr=weight". Segments with a missing
// address, unparsable or non-finite number, or non-positive weight are
// skipped rather than failing the whole string.
func parseWeights(weightsStr string) map[string]float64 {
	parsed := map[string]float64{}
	for _, chunk := range strings.Split(weightsStr, ",") {
		seg := strings.TrimSpace(chunk)
		if seg == "" {
			continue
		}
		idx := strings.Index(seg, "=")
		if idx <= 0 {
			continue
		}
		addr := models.NormalizeAddress(seg[:idx])
		weight, err := strconv.ParseFloat(strings.TrimSpace(seg[idx+1:]), 64)
		if addr == "" || err != nil || !money.IsFinite(weight) || weight <= 0 {
			continue
		}
		parsed[addr] = weight
	}
	return parsed
}

// parseBoolLike interprets loose boolean strings ("true/1/yes",
// "false/0/no"). Anything else returns the fallback.
func parseBoolLike(value string, fallback *bool) *bool {
	str := strings.ToLower(strings.TrimSpace(value))
	switch str {
	case "true", "1", "yes":
		v := true
		return &v
	case "false", "0", "no":
		v := false
		return &v
	default:
		return fallback
	}
}
