package scorer

// pincodeStateRanges approximates India Post's pincode-prefix-to-state
// table: the first two digits of a six-digit PIN identify a postal
// circle that maps to one (occasionally two neighbouring) states/UTs.
// This is necessarily approximate — several prefixes straddle state
// borders. It decides between the "same state range" +0.10 boost and the
// -0.10 penalty (§4.6); Stage A (internal/verify) rejects a candidate
// whose boost is negative, so a prefix outside the table or in a
// different range leads to a rejection.
var pincodeStateRanges = map[string][]string{
	"11": {"DELHI (NCT)"},
	"12": {"HARYANA"}, "13": {"HARYANA", "PUNJAB"},
	"14": {"PUNJAB"}, "15": {"PUNJAB"}, "16": {"CHANDIGARH", "PUNJAB"},
	"17": {"HIMACHAL PRADESH"},
	"18": {"JAMMU AND KASHMIR"}, "19": {"JAMMU AND KASHMIR", "LADAKH"},
	"20": {"UTTAR PRADESH"}, "21": {"UTTAR PRADESH"}, "22": {"UTTAR PRADESH"},
	"23": {"UTTAR PRADESH"}, "24": {"UTTAR PRADESH"}, "25": {"UTTAR PRADESH"},
	"26": {"UTTAR PRADESH"}, "27": {"UTTAR PRADESH"},
	"28": {"UTTARAKHAND"},
	"30": {"RAJASTHAN"}, "31": {"RAJASTHAN"}, "32": {"RAJASTHAN"},
	"33": {"RAJASTHAN"}, "34": {"RAJASTHAN"},
	"36": {"GUJARAT"}, "37": {"GUJARAT"}, "38": {"GUJARAT"}, "39": {"GUJARAT"},
	"40": {"MAHARASHTRA"}, "41": {"MAHARASHTRA"}, "42": {"MAHARASHTRA"},
	"43": {"MAHARASHTRA"}, "44": {"MAHARASHTRA"},
	"45": {"MADHYA PRADESH"}, "46": {"MADHYA PRADESH"}, "47": {"MADHYA PRADESH"}, "48": {"MADHYA PRADESH"},
	"49": {"CHHATTISGARH"},
	"50": {"TELANGANA"}, "51": {"TELANGANA", "ANDHRA PRADESH"},
	"52": {"ANDHRA PRADESH"}, "53": {"ANDHRA PRADESH"},
	"56": {"KARNATAKA"}, "57": {"KARNATAKA"}, "58": {"KARNATAKA"}, "59": {"KARNATAKA"},
	"60": {"TAMIL NADU"}, "61": {"TAMIL NADU"}, "62": {"TAMIL NADU"}, "63": {"TAMIL NADU"},
	"64": {"TAMIL NADU"}, "65": {"TAMIL NADU"}, "66": {"TAMIL NADU"},
	"67": {"KERALA"}, "68": {"KERALA"}, "69": {"KERALA"},
	"70": {"WEST BENGAL"}, "71": {"WEST BENGAL"}, "72": {"WEST BENGAL"}, "73": {"WEST BENGAL"},
	"74": {"WEST BENGAL"}, "75": {"ODISHA"}, "76": {"ODISHA"}, "77": {"ODISHA"},
	"78": {"ASSAM"}, "79": {"ASSAM", "ARUNACHAL PRADESH", "NAGALAND", "MANIPUR", "MIZORAM", "TRIPURA", "MEGHALAYA"},
	"80": {"BIHAR"}, "81": {"BIHAR"}, "82": {"BIHAR"}, "83": {"JHARKHAND"}, "84": {"BIHAR"}, "85": {"BIHAR"},
	"90": {"ARMY POST OFFICE"},
}

// sameStateRange reports whether two PIN codes plausibly belong to the
// same state per the prefix table, tolerating the table's overlap.
func sameStateRange(a, b string) bool {
	if len(a) < 2 || len(b) < 2 {
		return false
	}
	ra, oka := pincodeStateRanges[a[:2]]
	rb, okb := pincodeStateRanges[b[:2]]
	if !oka || !okb {
		return false
	}
	for _, x := range ra {
		for _, y := range rb {
			if x == y {
				return true
			}
		}
	}
	return false
}

// pincodeBoost implements §4.6's pincode_boost rule.
func pincodeBoost(seatPin, masterPin string) float64 {
	if seatPin == "" || masterPin == "" {
		return 0
	}
	if seatPin == masterPin {
		return 0.25
	}
	if sameStateRange(seatPin, masterPin) {
		return 0.10
	}
	return -0.10
}
