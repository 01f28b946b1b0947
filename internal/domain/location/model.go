package location

// Query captures the payload accepted by the resolver. Callers supply either
// explicit coordinates or a free-text address; coordinates win when both are set.
type Query struct {
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates"`
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a resolved location ready for downstream estimation.
type Place struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

// Match is a single geocoder candidate, already normalized to numeric coordinates.
type Match struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}
