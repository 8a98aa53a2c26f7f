package email

const (
	subjectWelcome                = "Bienvenue — parlons de votre projet"
	subjectBookingConfirmationFmt = "Votre rendez-vous du %s est confirmé"
	subjectOwnerBookingAlertFmt   = "Nouveau rendez-vous : %s"
	subjectCostComparison         = "Combien coûte vraiment un site vitrine ?"
	subjectCaseStudy              = "Comment un artisan a doublé ses demandes de devis"
	subjectThreeMistakes          = "3 erreurs qui font fuir vos clients en ligne"
	subjectLastChance             = "Dernière relance — on en reste là ?"
	subjectBookingReminderFmt     = "Rappel : votre rendez-vous du %s"
	subjectBookingFollowup        = "Merci pour votre temps — les prochaines étapes"
	subjectQuoteProposalFmt       = "Votre devis %s"
)
