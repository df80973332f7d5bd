package models

// Style describes how a doctor persona talks to patients.
type Style struct {
	Tone           string `json:"tone"`
	Communication  string `json:"communication"`
	DecisionMaking string `json:"decision_making"`
}

// Persona is a doctor profile served by the API and rendered on the globe.
type Persona struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Specialty   string   `json:"specialty"`
	Hospital    string   `json:"hospital"`
	Location    string   `json:"location"`
	Rating      float64  `json:"rating"`
	Experience  string   `json:"experience,omitempty"`
	Focus       []string `json:"focus,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Style       Style    `json:"style"`
	SampleQuote string   `json:"sample_quote,omitempty"`

	// Coordinates is set once the location label has been geocoded and stored.
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}
