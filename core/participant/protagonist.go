package participant

import (
	"strings"

	"github.com/siherrmann/caseweaver/model"
)

// scoreProfile computes the protagonist-selection score:
// 10 for a protagonist narrative-role tag, 2 per obligation, 3 per ethical
// tension, and 5 when the name contains "engineer" (case-insensitive).
func scoreProfile(profile *model.ParticipantProfile) int {
	score := 0
	if profile.NarrativeRole == model.NarrativeRoleProtagonist {
		score += 10
	}
	score += 2 * len(profile.Obligations)
	score += 3 * len(profile.EthicalTensions)
	if strings.Contains(strings.ToLower(profile.Name), "engineer") {
		score += 5
	}
	return score
}

// SelectProtagonist returns the id of the highest-scoring profile. Ties are
// broken by first-seen order in the input list; an empty list yields "".
func SelectProtagonist(profiles []*model.ParticipantProfile) string {
	if len(profiles) == 0 {
		return ""
	}

	best := profiles[0]
	bestScore := scoreProfile(best)
	for _, profile := range profiles[1:] {
		if score := scoreProfile(profile); score > bestScore {
			best = profile
			bestScore = score
		}
	}

	return best.ID
}
