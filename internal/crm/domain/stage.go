// Package domain holds the CRM pipeline vocabulary.
package domain

// Stage is a pipeline stage for a CRM client.
type Stage string

const (
	StageProspect    Stage = "prospect"
	StageContacte    Stage = "contacte"
	StageDevisEnvoye Stage = "devis_envoye"
	StageNegociation Stage = "negociation"
	StageGagne       Stage = "gagne"
	StagePerdu       Stage = "perdu"
)

var knownStages = map[Stage]struct{}{
	StageProspect:    {},
	StageContacte:    {},
	StageDevisEnvoye: {},
	StageNegociation: {},
	StageGagne:       {},
	StagePerdu:       {},
}

// IsKnown reports whether s is part of the fixed stage set. Transitions between
// known stages are unrestricted so the owner can correct mistakes by hand.
func (s Stage) IsKnown() bool {
	_, ok := knownStages[s]
	return ok
}

func (s Stage) String() string {
	return string(s)
}

// Ordered returns the stages in pipeline display order.
func Ordered() []Stage {
	return []Stage{StageProspect, StageContacte, StageDevisEnvoye, StageNegociation, StageGagne, StagePerdu}
}
