package models

// LocationTask is a free-text location label waiting to be geocoded.
type LocationTask struct {
	Label    string // Label is the location as written on the persona, e.g. "Tokyo, Japan".
	Attempts int    // Attempts is the number of failed geocoding attempts so far.
}
