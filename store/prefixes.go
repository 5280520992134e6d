package store

// Storage prefixes
const (
	BlockPrefix  = "bl-"
	CarbonPrefix = "cc-"
)
