package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name   string
		local  Spec
		remote Spec
		want   bool
	}{
		{
			name:   "identical",
			local:  Spec{"vendor": "apache", "hadoop": "2.7.1"},
			remote: Spec{"vendor": "apache", "hadoop": "2.7.1"},
			want:   true,
		},
		{
			name:   "remote superset",
			local:  Spec{"hadoop": "2.7.1"},
			remote: Spec{"vendor": "apache", "hadoop": "2.7.1", "java": "1.8"},
			want:   true,
		},
		{
			name:   "differing value",
			local:  Spec{"hadoop": "2.7.1"},
			remote: Spec{"hadoop": "2.4.1"},
			want:   false,
		},
		{
			name:   "missing key",
			local:  Spec{"arch": "x86_64"},
			remote: Spec{"hadoop": "2.7.1"},
			want:   false,
		},
		{
			name:   "empty local matches anything",
			local:  Spec{},
			remote: Spec{"hadoop": "2.7.1"},
			want:   true,
		},
		{
			name:   "empty remote fails non-empty local",
			local:  Spec{"hadoop": "2.7.1"},
			remote: Spec{},
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.local, tt.remote))
		})
	}
}

func TestMismatchNamesTheKey(t *testing.T) {
	local := Spec{"hadoop": "2.7.1"}
	remote := Spec{"hadoop": "2.4.1"}
	key, mismatched := Mismatch(local, remote)
	assert.True(t, mismatched)
	assert.Equal(t, "hadoop", key)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := Spec{"vendor": "apache", "hadoop": "2.7.1", "java": "1.8", "arch": "x86_64"}
	encoded, err := s.Encode()
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestDecodeEmpty(t *testing.T) {
	decoded, err := Decode("")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode("{not json")
	require.Error(t, err)
}
