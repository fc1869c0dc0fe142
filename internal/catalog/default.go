package catalog

const (
	// Placeholder is the hint text shown in empty reality inputs. A value equal
	// to it counts as unfilled.
	Placeholder = "Write your inspection result…"
	// DefaultNote is used by autofill for fields without a dedicated sample note.
	DefaultNote = "Looks as described, no visible defects."
)

const unknown = "unbekannt"

// Default returns the built-in German flat inspection catalog.
func Default() *Catalog {
	return &Catalog{
		AddressID:   "adresse",
		Placeholder: Placeholder,
		DefaultNote: DefaultNote,
		Fields: []Field{
			{ID: "adresse", Label: "Adresse", Kind: FreeText, Mandatory: true},
			{ID: "objekttyp", Label: "Objekttyp", Kind: Enumerated,
				Options: []string{"Etagenwohnung", "Wohnung", "Einfamilienhaus", "Gewerbe", "MFH"}},
			{ID: "baujahr", Label: "Baujahr", Kind: FreeText},
			{ID: "wohnflaeche", Label: "Wohnfläche", Kind: FreeText, Mandatory: true},
			{ID: "grundstueck", Label: "bei Haus Grundstücksfläche", Kind: FreeText},
			{ID: "etage", Label: "Etage", Kind: FreeText},
			{ID: "vollgeschosse", Label: "wieviele Vollgeschosse", Kind: FreeText},
			{ID: "keller", Label: "Keller", Kind: FreeText, Mandatory: true},
			{ID: "fassade_daemmung", Label: "Fassade – Dämmung", Kind: Enumerated,
				Options: []string{unknown, "Dämmung", "keine Dämmung"}},
			{ID: "dachgeschoss", Label: "Dachgeschoss", Kind: Enumerated,
				Options: []string{unknown, "ausgebaut", "nicht ausgebaut", "Flachdach"}},
			{ID: "straenge", Label: "Stränge erneuert", Kind: Enumerated,
				Options: []string{unknown, "Ja", "Nein"}},
			{ID: "fenster_material", Label: "Fenster Material", Kind: Enumerated,
				Options: []string{unknown, "Holz", "Kunststoff", "Sonstiges"}},
			{ID: "fenster_verglas", Label: "Fenster Verglasung", Kind: Enumerated,
				Options: []string{unknown, "Einfach verglast", "Doppelt verglast", "Sonstiges"}},
			{ID: "baujahr_fenster", Label: "Baujahr Fenster", Kind: FreeText},
			{ID: "heizung", Label: "Heizung", Kind: Enumerated,
				Options: []string{unknown, "Ofenheizung", "Gas-Etagenheizung", "Gas-Zentralheizung",
					"Öl-Zentralheizung", "Fernwärme", "Fernwärme (Gas)", "Sonstiges"}},
			{ID: "baujahr_heizung", Label: "Baujahr Heizung", Kind: FreeText},
			{ID: "warmwasser", Label: "Warmwasser", Kind: Enumerated,
				Options: []string{unknown, "zentral", "zentral (mit Warmwasser)", "dezentral"}},
		},
		SampleNotes: map[string]string{
			"wohnflaeche":     "Walls freshly painted, minor scratches on floor.",
			"baujahr_fenster": "Windows close properly, no drafts felt.",
			"keller":          "Bathroom ventilation needs checking.",
			"baujahr_heizung": "Heating seems older, might require service soon.",
		},
	}
}
