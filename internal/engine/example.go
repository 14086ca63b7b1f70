package engine

import (
	_ "embed"
)

//go:embed example.csv
var exampleCSV string

// ExamplePeople returns the bundled demonstration list.
func ExamplePeople() []Person {
	return ParseDelimited(exampleCSV)
}
