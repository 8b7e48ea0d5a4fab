package spec

import (
	json "github.com/goccy/go-json"
)

// Spec is the identity descriptor a node advertises to cooperating nodes:
// vendor, hadoop version, java version, cpu architecture. Two nodes may only
// be treated as compatible when every field the requiring side cares about is
// present and exactly equal on the providing side.
type Spec map[string]string

// Matches reports whether remote satisfies local: every key in local must
// exist in remote with an equal value. Extra keys in remote are ignored, so
// the requiring side may declare a subset of what the provider advertises,
// but not the other way around.
func Matches(local, remote Spec) bool {
	_, mismatched := Mismatch(local, remote)
	return !mismatched
}

// Mismatch returns the first (in unspecified order) local key that remote
// does not satisfy, for error reporting.
func Mismatch(local, remote Spec) (key string, mismatched bool) {
	for k, v := range local {
		if remote[k] != v {
			return k, true
		}
	}
	return "", false
}

// Encode serializes the spec as the JSON exchanged on relations.
func (s Spec) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a JSON spec field from a remote unit's data bag. An empty
// field decodes to an empty spec.
func Decode(data string) (Spec, error) {
	if data == "" {
		return Spec{}, nil
	}
	var s Spec
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	return s, nil
}
