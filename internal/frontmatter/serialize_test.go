package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{}, "\n")
	require.NoError(t, err)
	require.Equal(t, "", string(out))
}

func TestSerializeYAML_DeterministicOrder(t *testing.T) {
	fields := map[string]any{
		"b": "two",
		"a": "one",
		"c": 3,
	}

	out1, err := SerializeYAML(fields, "\n")
	require.NoError(t, err)
	out2, err := SerializeYAML(fields, "\n")
	require.NoError(t, err)
	require.Equal(t, string(out1), string(out2))
	require.Equal(t, "a: one\nb: two\nc: 3\n", string(out1))
}

func TestSerializeYAML_CRLF(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"a": "one"}, "\r\n")
	require.NoError(t, err)
	require.Equal(t, "a: one\r\n", string(out))
}

func TestSerializeYAML_NestedMapSortsKeysRecursively(t *testing.T) {
	out, err := SerializeYAML(map[string]any{
		"params": map[string]any{"z": 1, "a": true},
	}, "\n")
	require.NoError(t, err)
	require.Equal(t, "params:\n  a: true\n  z: 1\n", string(out))
}

func TestSerializeYAML_Dates(t *testing.T) {
	out, err := SerializeYAML(map[string]any{
		"date": time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC),
	}, "\n")
	require.NoError(t, err)
	require.Equal(t, "date: 2024-12-13\n", string(out))
}
