package matching

import "match-workers/internal/models"

// Classify maps a final score and the domain-incompatibility flag to a policy tier.
// Preview mode lowers the hidden cut-off to PreviewMaybe.
func Classify(overall int, incompatible bool, mode models.EvaluationMode, t Thresholds) models.PolicyTier {
	if incompatible {
		return models.PolicyHidden
	}
	maybeFloor := t.Maybe
	if mode == models.ModePreview {
		maybeFloor = t.PreviewMaybe
	}

	switch {
	case overall >= t.Hot:
		return models.PolicyHot
	case overall >= t.Standard:
		return models.PolicyStandard
	case overall >= maybeFloor:
		return models.PolicyMaybe
	default:
		return models.PolicyHidden
	}
}

// TierRank orders tiers for sorting: hot > standard > maybe > hidden.
func TierRank(p models.PolicyTier) int {
	switch p {
	case models.PolicyHot:
		return 3
	case models.PolicyStandard:
		return 2
	case models.PolicyMaybe:
		return 1
	default:
		return 0
	}
}
