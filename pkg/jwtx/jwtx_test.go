package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/ziberlive/colive/pkg/cryptox"
	"github.com/ziberlive/colive/pkg/jwtx"
)

const exampleIssuer = "https://colive.example"

func newSigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	return signer
}

func adminClaims(now time.Time) jwtx.Claims {
	return jwtx.NewAccessClaims(jwtx.AccessParams{
		Subject:     "user-1",
		MemberID:    "member-1",
		CommunityID: "community-1",
		Role:        "admin",
		Name:        "Ada",
		Scopes:      []string{"admin:read", "admin:write"},
		Issuer:      exampleIssuer,
		Audience:    []string{"colive"},
		TTL:         5 * time.Minute,
	}, now)
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newSigner(t, "k1")
	require.Equal(t, "EdDSA", signer.Alg())

	claims := adminClaims(time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.False(t, keys.IsReady())
	require.NoError(t, keys.AddSigner(signer))
	require.True(t, keys.IsReady())

	jwks := keys.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "k1", jwks.Keys[0].Kid)

	got, err := jwtx.NewVerifierEdDSA(keys, exampleIssuer, []string{"colive"}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "member-1", got.MemberID)
	require.Equal(t, "community-1", got.CommunityID)
	require.Equal(t, "admin", got.Role)
	require.True(t, got.HasScope("admin:write"))
	require.False(t, got.HasScope("member:write"))
	require.NotEmpty(t, got.ID)
}

func TestEdDSAVerifyFailures(t *testing.T) {
	signer := newSigner(t, "k1")
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	token, err := signer.Sign(adminClaims(time.Now().UTC()))
	require.NoError(t, err)

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := jwtx.NewVerifierEdDSA(keys, "https://other.example", nil).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("wrong audience", func(t *testing.T) {
		_, err := jwtx.NewVerifierEdDSA(keys, exampleIssuer, []string{"billing"}).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("unknown kid", func(t *testing.T) {
		_, err := jwtx.NewVerifierEdDSA(jwtx.NewKeySet(), exampleIssuer, nil).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrNoKey)
	})

	t.Run("signed by another key with same kid", func(t *testing.T) {
		imposter := newSigner(t, "k1")
		forged, err := imposter.Sign(adminClaims(time.Now().UTC()))
		require.NoError(t, err)
		_, err = jwtx.NewVerifierEdDSA(keys, exampleIssuer, nil).Verify(forged)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := signer.Sign(adminClaims(time.Now().Add(-time.Hour)))
		require.NoError(t, err)
		_, err = jwtx.NewVerifierEdDSA(keys, exampleIssuer, nil).Verify(old)
		require.Error(t, err)
	})
}

func TestClaimsValidation(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:   "colive",
		Audience: []string{"colive", "media"},
	}}

	require.NoError(t, c.ValidateIssuer(""))
	require.NoError(t, c.ValidateIssuer("colive"))
	require.ErrorIs(t, c.ValidateIssuer("billing"), jwtx.ErrIssuer)

	require.NoError(t, c.ValidateAudience(nil))
	require.NoError(t, c.ValidateAudience([]string{"media"}))
	require.ErrorIs(t, c.ValidateAudience([]string{"billing"}), jwtx.ErrAudience)

	c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
	require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrNotYetValid)
}

func TestKeySetRejectsForeignKeys(t *testing.T) {
	keys := jwtx.NewKeySet()
	require.Error(t, keys.AddJWK(jwtx.JWK{Kty: "RSA", Kid: "r1"}))
	require.Error(t, keys.AddJWK(jwtx.JWK{Kty: "OKP", Crv: "Ed25519", Kid: "short", X: "AAAA"}))
}
