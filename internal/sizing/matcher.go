package sizing

import "strings"

// MatchHeader resolves a garment column name against profile dimension keys.
// Shops name the same dimension inconsistently ("어깨너비" vs "어깨"), so a key
// matches when either string contains the other. The first matching key in
// the order given wins, even over a later exact match, and callers pass
// sorted keys to keep the result stable.
//
// Containment can over-match ("총장" also matches "앞총장"). That trade-off is
// accepted until a synonym table exists.
func MatchHeader(header string, keys []string) (string, bool) {
	if header == "" {
		return "", false
	}

	for _, key := range keys {
		if key == "" {
			continue
		}
		if strings.Contains(header, key) || strings.Contains(key, header) {
			return key, true
		}
	}

	return "", false
}
