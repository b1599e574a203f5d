package candidate

// ultraGenericNames are college/hospital names shared by many master
// entries, where address discrimination is mandatory (§4.5 "Ultra-generic
// guard"). TALUK HOSPITAL is added per the Open Question resolution in
// SPEC_FULL.md — same shape as DISTRICT HOSPITAL/AREA HOSPITAL.
var ultraGenericNames = map[string]bool{
	"DISTRICT HOSPITAL":   true,
	"AREA HOSPITAL":       true,
	"GENERAL HOSPITAL":    true,
	"GOVERNMENT HOSPITAL": true,
	"ESIC HOSPITAL":       true,
	"TALUK HOSPITAL":      true,
	"CIVIL HOSPITAL":      true,
	"COMMUNITY HEALTH CENTRE": true,
}

// IsUltraGeneric reports whether a normalized college name is on the
// ultra-generic list.
func IsUltraGeneric(normalizedName string) bool {
	return ultraGenericNames[normalizedName]
}
