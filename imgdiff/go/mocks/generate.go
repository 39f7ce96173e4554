package mocks

//go:generate mockery -name Codec -dir ../codec -output .
//go:generate mockery -name Store -dir ../artifactstore -output .
