package model

import "fmt"

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Precision tells where a set of coordinates came from.
type Precision string

const (
	Precise     Precision = "precise"     // device sensors
	Approximate Precision = "approximate" // network address
)

// Place is the reverse-geocoded description of a point.
type Place struct {
	City                 string `json:"city"`
	Locality             string `json:"locality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	CountryName          string `json:"countryName"`
}

// Display renders the place the way it is shown to the user.
func (p Place) Display() string {
	return fmt.Sprintf("%s, %s, %s",
		firstNonEmpty(p.City, p.Locality, "Unknown City"),
		firstNonEmpty(p.PrincipalSubdivision, "Unknown State"),
		firstNonEmpty(p.CountryName, "Unknown Country"),
	)
}

// FormLabel renders the shorter label submitted to the times source.
func (p Place) FormLabel() string {
	return fmt.Sprintf("%s, %s",
		firstNonEmpty(p.City, p.Locality, "Unknown"),
		firstNonEmpty(p.PrincipalSubdivision, p.CountryName, "Unknown"),
	)
}

// Location is a resolved position plus its best-effort place name.
type Location struct {
	Coordinates
	Precision Precision `json:"precision"`
	Place     *Place    `json:"place,omitempty"`
}

// FormatCoordinates prints coordinates with the number of decimals that
// matches the precision of the source.
func (l Location) FormatCoordinates() string {
	if l.Precision == Approximate {
		return fmt.Sprintf("%.2f, %.2f", l.Latitude, l.Longitude)
	}
	return fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
}

// Label is the text shown after "Your Location: ".
func (l Location) Label() string {
	label := l.FormatCoordinates()
	if l.Place != nil {
		label = l.Place.Display()
	}
	if l.Precision == Approximate {
		label += " (approximate)"
	}
	return label
}

// FormLabel is the location field submitted to the primary times source.
// Without a place it falls back to four-decimal coordinates.
func (l Location) FormLabel() string {
	if l.Place != nil {
		return l.Place.FormLabel()
	}
	return fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
