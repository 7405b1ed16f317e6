package fips

// Descriptions is a small built-in lookup of common SAME FIPS codes to
// human-readable county/state descriptions, used by the offline decoder
// (C2) to annotate decoded locations. Unknown codes are preserved as
// bare strings by the caller; this table is deliberately not exhaustive
// (the full NWS table is an external data file; callers needing complete
// coverage should supply their own lookup ahead of this one).
var Descriptions = map[string]string{
	"039137": "Summit County, OH",
	"039035": "Cuyahoga County, OH",
	"039153": "Wayne County, OH",
	"018001": "Adams County, IN",
	"006037": "Los Angeles County, CA",
	"048201": "Harris County, TX",
	"017031": "Cook County, IL",
}

// Describe returns the description for a normalized six-digit FIPS code,
// or "" if unknown.
func Describe(code string) string { return Descriptions[code] }
