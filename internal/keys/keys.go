// Package keys derives the storage key set an artifact writer is expected to
// have populated. Key formats are colon-delimited (kind:id:qualifier:sub) and
// must stay stable across releases; readers elsewhere depend on them.
package keys

import "strings"

const (
	kindModule   = "module"
	kindCampaign = "campaign"

	componentEmail   = "email"
	componentLanding = "landing"
)

// Expected returns the ordered key set for an artifact variant. An empty
// language or department means the variant does not exist. A department
// without a language contributes nothing; the composite key requires both.
func Expected(artifactID, language, department string) []string {
	id := strings.TrimSpace(artifactID)
	lang := strings.ToLower(strings.TrimSpace(language))
	dept := strings.TrimSpace(department)

	out := []string{join(kindModule, id)}
	if lang == "" {
		return out
	}
	out = append(out, join(kindModule, id, lang))
	if dept != "" {
		out = append(out, join(kindModule, id, dept, lang))
	}
	return out
}

// ExpectedComponents returns the key set for an artifact with optional
// sub-components. The base key is always present; with both flags false it is
// the only key.
func ExpectedComponents(artifactID string, hasEmail, hasLanding bool) []string {
	id := strings.TrimSpace(artifactID)
	out := []string{join(kindCampaign, id)}
	if hasEmail {
		out = append(out, join(kindCampaign, id, componentEmail))
	}
	if hasLanding {
		out = append(out, join(kindCampaign, id, componentLanding))
	}
	return out
}

func join(segments ...string) string {
	return strings.Join(segments, ":")
}
