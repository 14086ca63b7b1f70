package engine

// Person is one decoded input record: a display name and a raw birthday string.
// Only the month and day components of Birthday are used by the aggregator.
type Person struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"`
}
