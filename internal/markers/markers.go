package markers

import "math"

// Marker defaults.
const (
	DefaultSpecialtyColor = "#e5e5e5"
	DefaultRegionColor    = "#666"
	DefaultFlag           = "🌐"
)

// Region palette.
const (
	colorUSA          = "#4285f4"
	colorEurope       = "#ea4335"
	colorIndia        = "#fbbc04"
	colorEastAsia     = "#34a853"
	colorAfrica       = "#9c27b0"
	colorLatinAmerica = "#00bcd4"
)

// Rating range mapped onto the size range.
const (
	minRating = 4.6
	maxRating = 4.9
	minSize   = 0.3
	maxSize   = 0.8
)

var specialtyColors = NewRules(DefaultSpecialtyColor,
	Rule[string]{Equals("Cardiology"), "#ff4444"},
	Rule[string]{Equals("Neurology"), "#44ff44"},
	Rule[string]{Equals("Pediatrics"), "#ffff44"},
	Rule[string]{Equals("Oncology"), "#ff44ff"},
	Rule[string]{Equals("Orthopedics"), "#44ffff"},
	Rule[string]{Equals("Dermatology"), "#ffa500"},
	Rule[string]{Equals("Psychiatry"), "#9966ff"},
	Rule[string]{Equals("Emergency Medicine"), "#ff6644"},
	Rule[string]{Equals("Family Medicine"), "#66ff44"},
	Rule[string]{Equals("Endocrinology"), "#4466ff"},
)

var regionColors = NewRules(DefaultRegionColor,
	Rule[string]{City("Boston"), colorUSA},
	Rule[string]{City("Houston"), colorUSA},
	Rule[string]{City("Los Angeles"), colorUSA},
	Rule[string]{City("London"), colorEurope},
	Rule[string]{City("Edinburgh"), colorEurope},
	Rule[string]{City("Manchester"), colorEurope},
	Rule[string]{City("Mumbai"), colorIndia},
	Rule[string]{City("Delhi"), colorIndia},
	Rule[string]{City("Ahmedabad"), colorIndia},
	Rule[string]{City("Tokyo"), colorEastAsia},
	Rule[string]{City("Osaka"), colorEastAsia},
	Rule[string]{City("Shanghai"), colorEastAsia},
	Rule[string]{City("Lagos"), colorAfrica},
	Rule[string]{City("Cape Town"), colorAfrica},
	Rule[string]{City("São Paulo"), colorLatinAmerica},
	Rule[string]{City("Mexico City"), colorLatinAmerica},

	// Cities outside the named list fall back to their country.
	Rule[string]{Country("USA"), colorUSA},
	Rule[string]{Country("UK"), colorEurope},
	Rule[string]{Country("France"), colorEurope},
	Rule[string]{Country("Germany"), colorEurope},
	Rule[string]{Country("Spain"), colorEurope},
	Rule[string]{Country("India"), colorIndia},
	Rule[string]{Country("Japan"), colorEastAsia},
	Rule[string]{Country("China"), colorEastAsia},
	Rule[string]{Country("South Korea"), colorEastAsia},
	Rule[string]{Equals("Singapore"), colorEastAsia},
	Rule[string]{Country("Nigeria"), colorAfrica},
	Rule[string]{Country("South Africa"), colorAfrica},
	Rule[string]{Country("Egypt"), colorAfrica},
	Rule[string]{Country("Brazil"), colorLatinAmerica},
	Rule[string]{Country("Mexico"), colorLatinAmerica},
	Rule[string]{Country("Argentina"), colorLatinAmerica},
	Rule[string]{Country("Colombia"), colorLatinAmerica},
)

// "South Africa" and "South Korea" precede any rule matching only their last word.
var countryFlags = NewRules(DefaultFlag,
	Rule[string]{Country("South Africa"), "🇿🇦"},
	Rule[string]{Country("South Korea"), "🇰🇷"},
	Rule[string]{Country("USA"), "🇺🇸"},
	Rule[string]{Country("UK"), "🇬🇧"},
	Rule[string]{Country("France"), "🇫🇷"},
	Rule[string]{Country("Germany"), "🇩🇪"},
	Rule[string]{Country("Spain"), "🇪🇸"},
	Rule[string]{Country("Russia"), "🇷🇺"},
	Rule[string]{Country("India"), "🇮🇳"},
	Rule[string]{Country("Japan"), "🇯🇵"},
	Rule[string]{Country("China"), "🇨🇳"},
	Rule[string]{Country("Singapore"), "🇸🇬"},
	Rule[string]{Country("Nigeria"), "🇳🇬"},
	Rule[string]{Country("Egypt"), "🇪🇬"},
	Rule[string]{Country("Brazil"), "🇧🇷"},
	Rule[string]{Country("Mexico"), "🇲🇽"},
	Rule[string]{Country("Argentina"), "🇦🇷"},
	Rule[string]{Country("Colombia"), "🇨🇴"},
	Rule[string]{Country("Australia"), "🇦🇺"},
)

// SpecialtyColor returns the marker color of a medical specialty.
func SpecialtyColor(specialty string) string {
	return specialtyColors.Eval(specialty)
}

// RegionColor returns the color of the world region a location label belongs to.
func RegionColor(location string) string {
	return regionColors.Eval(location)
}

// CountryFlag returns the flag emoji of a "City, Country" label.
func CountryFlag(location string) string {
	return countryFlags.Eval(location)
}

// PointSize maps a rating in [4.6, 4.9] linearly onto [0.3, 0.8]. Ratings outside the
// range are clamped.
func PointSize(rating float64) float64 {
	normalized := math.Max(0, math.Min(1, (rating-minRating)/(maxRating-minRating)))
	return minSize + normalized*(maxSize-minSize)
}

// Label is the hover text of a marker.
func Label(name, specialty string) string {
	return name + " - " + specialty
}
