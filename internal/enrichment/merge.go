package enrichment

import "github.com/fiction-occupations/enricher/internal/models"

// Merge combines a direct-recall answer (a) with a grounded answer (b).
// Every field takes b's value unless b left it blank, in which case a's value
// is kept, blank or not.
func Merge(a, b models.SourceResult) models.SourceResult {
	return models.SourceResult{
		Genre:                   pick(a.Genre, b.Genre, models.IsBlankString(b.Genre)),
		Protagonists:            pick(a.Protagonists, b.Protagonists, models.IsBlankList(b.Protagonists)),
		Professions:             pick(a.Professions, b.Professions, models.IsBlankList(b.Professions)),
		Codes:                   pick(a.Codes, b.Codes, models.IsBlankList(b.Codes)),
		LoveInterest:            pick(a.LoveInterest, b.LoveInterest, models.IsBlankOptional(b.LoveInterest)),
		LoveInterestProfessions: pick(a.LoveInterestProfessions, b.LoveInterestProfessions, models.IsBlankList(b.LoveInterestProfessions)),
		LoveInterestCodes:       pick(a.LoveInterestCodes, b.LoveInterestCodes, models.IsBlankList(b.LoveInterestCodes)),
	}
}

func pick[T any](a, b T, bBlank bool) T {
	if bBlank {
		return a
	}
	return b
}
