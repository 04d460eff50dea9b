package familyname

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_KnownVectors(t *testing.T) {
	tests := []struct {
		name      string
		identity  string
		publisher string
		expected  string
	}{
		{
			name:      "Windows Terminal (documented platform value 8wekyb3d8bbwe)",
			identity:  "Microsoft.WindowsTerminal",
			publisher: "CN=Microsoft Corporation, O=Microsoft Corporation, L=Redmond, S=Washington, C=US",
			expected:  "Microsoft.WindowsTerminal_8WEKYB3D8BBWE",
		},
		{
			name:      "Contoso",
			identity:  "Contoso.App",
			publisher: "CN=Contoso",
			expected:  "Contoso.App_H91MS92GDSMMT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compute(tt.identity, tt.publisher))
		})
	}
}

func TestCompute_MatchesPlatformCaseInsensitively(t *testing.T) {
	got := Compute("Microsoft.WindowsTerminal", "CN=Microsoft Corporation, O=Microsoft Corporation, L=Redmond, S=Washington, C=US")
	assert.True(t, strings.EqualFold(got, "Microsoft.WindowsTerminal_8wekyb3d8bbwe"))
}

func TestCompute_IsDeterministic(t *testing.T) {
	first := Compute("Contoso.App", "CN=Contoso")
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Compute("Contoso.App", "CN=Contoso"))
	}
}

func TestPublisherID_ShapeAndAlphabet(t *testing.T) {
	publishers := []string{
		"",
		"CN=Contoso",
		"CN=Fabrikam, O=Fabrikam, C=DE",
		"CN=Ünïcødé Publisher",
	}

	for _, publisher := range publishers {
		id := PublisherID(publisher)
		require.Len(t, id, PublisherIDLength, "publisher %q", publisher)
		for _, r := range id {
			assert.Contains(t, Alphabet, string(r), "publisher %q produced symbol outside alphabet", publisher)
		}
		assert.NotContains(t, id, "I")
		assert.NotContains(t, id, "L")
		assert.NotContains(t, id, "O")
		assert.NotContains(t, id, "U")
	}
}

func TestPublisherID_DifferentPublishersDiffer(t *testing.T) {
	assert.NotEqual(t, PublisherID("CN=Contoso"), PublisherID("CN=Fabrikam"))
}
