package game

// CharNames maps character ids to the (slug, display name) pairs used in
// published cache keys and logs. The id is the index into this slice.
var CharNames = [][2]string{
	{"AEG", "Aegis"},
	{"BLD", "Blade"},
	{"CIN", "Cinder"},
	{"DRF", "Driftwood"},
	{"EMB", "Ember"},
	{"FAL", "Falcon"},
	{"GAL", "Gale"},
	{"HAV", "Havoc"},
	{"IRN", "Ironclad"},
	{"JIN", "Jinx"},
	{"KES", "Kestrel"},
	{"LUM", "Lumen"},
	{"MIR", "Mirage"},
	{"NOX", "Nox"},
	{"ONY", "Onyx"},
	{"PHN", "Phantom"},
	{"QUI", "Quill"},
	{"RIF", "Riftwalker"},
	{"SAB", "Saber"},
	{"TMP", "Tempest"},
	{"UMB", "Umbra"},
	{"VIP", "Viper"},
	{"WRD", "Warden"},
	{"ZPH", "Zephyr"},
}

// NumCharacters is the size of the playable roster.
var NumCharacters = int16(len(CharNames))

// ValidCharID reports whether the id refers to a roster character.
func ValidCharID(id int16) bool {
	return id >= 0 && id < NumCharacters
}

// CharSlug returns the short code for a character id, or "UNK".
func CharSlug(id int16) string {
	if !ValidCharID(id) {
		return "UNK"
	}
	return CharNames[id][0]
}

// CharName returns the display name for a character id, or "Unknown".
func CharName(id int16) string {
	if !ValidCharID(id) {
		return "Unknown"
	}
	return CharNames[id][1]
}
