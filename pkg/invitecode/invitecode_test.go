package invitecode_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"github.com/ziberlive/colive/pkg/invitecode"
)

func TestGenerateFormat(t *testing.T) {
	g := invitecode.NewGenerator()
	for range 200 {
		code := g.Generate()
		require.Len(t, code, invitecode.Length)
		require.True(t, invitecode.Valid(code), code)
	}
}

func TestGenerateRegenerates(t *testing.T) {
	g := invitecode.NewSeededGenerator(7)
	first := g.Generate()
	second := g.Generate()
	require.NotEqual(t, first, second)

	// Same seed, same sequence.
	replay := invitecode.NewSeededGenerator(7)
	require.Equal(t, first, replay.Generate())
}

func TestGeneratedCodesAlwaysValid(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("seeded codes match the 4-3-3 format", prop.ForAll(
		func(seed uint64) bool {
			return invitecode.Valid(invitecode.NewSeededGenerator(seed).Generate())
		},
		gen.UInt64(),
	))

	properties.Property("a code survives the join link round trip", prop.ForAll(
		func(seed uint64) bool {
			code := invitecode.NewSeededGenerator(seed).Generate()
			return invitecode.FromScan(invitecode.JoinURL("https://app.example", code)) == code
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"AB3X-7K2-9QZ", true},
		{"ZZ11-222-333", true},
		{"ab3x-7k2-9qz", false},
		{"AB3X7K29QZ", false},
		{"AB3X-7K2-9Q", false},
		{"AB3X-7K2-9QZ-", false},
		{"AB3X-7K_-9QZ", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			require.Equal(t, tt.want, invitecode.Valid(tt.code))
		})
	}
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "AB3X-7K2-9QZ", invitecode.Normalize("  ab3x-7k2-9qz\n"))
}

func TestFromScan(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"join link with query", "https://app.example/join/ZZ11-222-333?x=1", "ZZ11-222-333"},
		{"join link plain", "https://app.example/join/AB3X-7K2-9QZ", "AB3X-7K2-9QZ"},
		{"join link with fragment", "https://app.example/join/AB3X-7K2-9QZ#top", "AB3X-7K2-9QZ"},
		{"join link trailing slash", "https://app.example/join/AB3X-7K2-9QZ/", "AB3X-7K2-9QZ"},
		{"bare code", "AB3X-7K2-9QZ", "AB3X-7K2-9QZ"},
		{"bare code with whitespace", " AB3X-7K2-9QZ ", "AB3X-7K2-9QZ"},
		{"unrelated url", "https://app.example/login?next=1", "https://app.example/login?next=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, invitecode.FromScan(tt.payload))
		})
	}
}

func TestJoinURL(t *testing.T) {
	require.Equal(t, "https://app.example/join/AB3X-7K2-9QZ", invitecode.JoinURL("https://app.example/", "AB3X-7K2-9QZ"))
}
