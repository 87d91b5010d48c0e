package loader

// NullMarker is the literal string the survey export uses for missing
// answers. It is excluded from question statistics and remapped to an
// explicit "Unknown" category on gender columns.
const NullMarker = "#NULL!"

// GenderValueMap translates raw gender codes to canonical labels.
// Codes not present in the map pass through unchanged, so unexpected
// export codes stay visible instead of becoming missing values.
var GenderValueMap = map[string]string{
	"1":        "Male",
	"2":        "Female",
	"3":        "Transgender",
	NullMarker: "Unknown",
}

// genderColumns are the raw identifiers the gender remapping applies to,
// in the order they are tried.
var genderColumns = []string{"RSex", "S4C5"}
