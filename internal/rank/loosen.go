package rank

import "strings"

// loosenQuery derives the next geographically broader variant of a
// query: drop the suburb while a city remains, then drop the city, then
// drop the last token. Returns "" when the query is down to a single
// token and cannot be loosened further.
func loosenQuery(query, suburb, city string) string {
	tokens := strings.Fields(query)
	if len(tokens) <= 1 {
		return ""
	}

	if suburb != "" && city != "" && containsPhrase(query, suburb) && containsPhrase(query, city) {
		if out := removePhrase(query, suburb); out != "" && out != query {
			return out
		}
	}
	if city != "" && containsPhrase(query, city) {
		if out := removePhrase(query, city); out != "" && out != query {
			return out
		}
	}

	return tidy(strings.Join(tokens[:len(tokens)-1], " "))
}

func containsPhrase(query, phrase string) bool {
	return strings.Contains(strings.ToLower(query), strings.ToLower(phrase))
}

// removePhrase deletes the first case-insensitive occurrence of phrase
// from query and cleans up the remainder.
func removePhrase(query, phrase string) string {
	lowered := strings.ToLower(query)
	idx := strings.Index(lowered, strings.ToLower(phrase))
	if idx < 0 {
		return query
	}
	return tidy(query[:idx] + query[idx+len(phrase):])
}

// tidy collapses whitespace and strips a connective left dangling by a
// phrase removal ("coffee in" after dropping the locality).
func tidy(s string) string {
	tokens := strings.Fields(s)
	for len(tokens) > 0 {
		switch strings.ToLower(tokens[len(tokens)-1]) {
		case "in", "near", "at":
			tokens = tokens[:len(tokens)-1]
		default:
			return strings.Join(tokens, " ")
		}
	}
	return ""
}
