package parser

// Vocabulary is the locale-specific data the extractor matches against.
// City order matters: it decides which city becomes the pickup.
type Vocabulary struct {
	Cities         []string
	PassengerNouns []string
}

// DefaultVocabulary covers the Moroccan market.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Cities: []string{
			"Casablanca",
			"Rabat",
			"Marrakech",
			"Fès",
			"Fes",
			"Tanger",
			"Tangier",
			"Agadir",
			"Meknès",
			"Meknes",
			"Oujda",
			"Kénitra",
			"Kenitra",
			"Tétouan",
			"Tetouan",
			"Essaouira",
			"Ouarzazate",
			"Chefchaouen",
			"El Jadida",
			"Mohammedia",
			"Safi",
			"Nador",
			"Ifrane",
			"Merzouga",
			"Dakhla",
			"Laâyoune",
		},
		PassengerNouns: []string{
			"person",
			"passenger",
			"people",
			"pax",
			"personne",
			"passager",
		},
	}
}
