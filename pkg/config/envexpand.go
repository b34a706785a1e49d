package config

import "os"

// ExpandEnv expands ${VAR} and $VAR references in YAML content using Go's
// standard library, so secrets never need to live in the config file
// itself. Missing variables expand to empty string; Validate catches
// required fields left empty by a missing variable.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
