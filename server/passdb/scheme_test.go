package passdb

import (
	"testing"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDetectScheme(t *testing.T) {
	testCases := []struct {
		stored string
		want   definitions.Scheme
	}{
		{"$2a$10$dRFLSkYedQ05sqMs3b265e0nnJSoa9RhbpKXU79FDPVeuS1qBG7Jq", definitions.SchemeBcrypt},
		{"$2$10$dRFLSkYedQ05sqMs3b265e0nnJSoa9RhbpKXU79FDPVeuS1qBG7Jq", definitions.SchemeBcrypt},
		{"$P$9IQRaTwmfeRo7ud9Fh4E2PdI0S3r.L0", definitions.SchemePHPass},
		{"$H$9IQRaTwmfeRo7ud9Fh4E2PdI0S3r.L0", definitions.SchemePHPass},
		{"$sha$74e0a1a5a4ec3c0a2e3b9d2d1b1e0e0a3b2c1d0e", definitions.SchemeIteratedDigest},
		{"$s$74e0a1a5a4ec3c0a2e3b9d2d1b1e0e0a3b2c1d0e", definitions.SchemeIteratedDigest},
		{"$5$cegeasjoos$vPX5AwDqOTGocGjehr7k1IYp6Kt.U4FmMUa.1l6NrzD", definitions.SchemeCrypt},
		{"$1$saltsalt$qjXMvbEw8oaL.CzflDugX/", definitions.SchemeCrypt},
		{"$2b$10$dRFLSkYedQ05sqMs3b265e0nnJSoa9RhbpKXU79FDPVeuS1qBG7Jq", definitions.SchemeBcrypt},
		{"$2y$10$dRFLSkYedQ05sqMs3b265e0nnJSoa9RhbpKXU79FDPVeuS1qBG7Jq", definitions.SchemeBcrypt},
		{"abA5hjwYqm1.I", definitions.SchemeCrypt},
		{"{SSHA256}9BT0VNzrkTp51/skOYDjOEFoYPN9FoGx/Gd+njZv5tEOgtl6TvODXg==", definitions.SchemeCrypt},
		{"testpassword", definitions.SchemePlain},
		{"abc$2a$def", definitions.SchemePlain},
		{"$", definitions.SchemePlain},
		{"$$", definitions.SchemePlain},
		{"", definitions.SchemeUnknown},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, DetectScheme(tc.stored), tc.stored)
	}
}

func TestVerifyBcrypt(t *testing.T) {
	ok, err := verifyBcrypt("testpassword2", "$2a$10$dRFLSkYedQ05sqMs3b265e0nnJSoa9RhbpKXU79FDPVeuS1qBG7Jq", nil, "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyBcrypt("wrong", "$2a$10$dRFLSkYedQ05sqMs3b265e0nnJSoa9RhbpKXU79FDPVeuS1qBG7Jq", nil, "")
	require.NoError(t, err)
	assert.False(t, ok)

	peppered := "$2a$10$ndCGPWg5JFMQH/Kl6xKe.OGNaiG7CFIAVsgAOJU75Q6g5/FpY5eX6"

	ok, err = verifyBcrypt("testpassword3", peppered, nil, "abcdefg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = verifyBcrypt("testpassword3", peppered, nil, "")
	assert.False(t, ok)

	ok, err = verifyBcrypt("testpassword3", "$2a$10$short", nil, "")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestVerifyBcryptMinorVersions(t *testing.T) {
	for _, prefix := range []string{"$2b$", "$2y$"} {
		stored := prefix + "10$dRFLSkYedQ05sqMs3b265e0nnJSoa9RhbpKXU79FDPVeuS1qBG7Jq"

		ok, err := verifierFor(DetectScheme(stored))("testpassword2", stored, nil, "")
		require.NoError(t, err, prefix)
		assert.True(t, ok, prefix)

		ok, err = verifierFor(DetectScheme(stored))(stored, stored, nil, "")
		require.NoError(t, err, prefix)
		assert.False(t, ok, prefix)

		peppered := prefix + "10$ndCGPWg5JFMQH/Kl6xKe.OGNaiG7CFIAVsgAOJU75Q6g5/FpY5eX6"

		ok, err = verifierFor(DetectScheme(peppered))("testpassword3", peppered, nil, "abcdefg")
		require.NoError(t, err, prefix)
		assert.True(t, ok, prefix)

		ok, _ = verifierFor(DetectScheme(peppered))("testpassword3", peppered, nil, "")
		assert.False(t, ok, prefix)
	}
}

func TestVerifyPHPass(t *testing.T) {
	stored := "$P$9IQRaTwmfeRo7ud9Fh4E2PdI0S3r.L0"

	ok, err := verifyPHPass("test12345", stored, nil, "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPHPass("test12346", stored, nil, "")
	require.NoError(t, err)
	assert.False(t, ok)

	// The pepper is ignored by phpass.
	ok, _ = verifyPHPass("test12345", stored, nil, "pepper")
	assert.True(t, ok)

	_, err = verifyPHPass("test12345", "$P$9IQRaTwmf", nil, "")
	assert.Error(t, err)

	_, err = verifyPHPass("test12345", "$P$!IQRaTwmfeRo7ud9Fh4E2PdI0S3r.L0", nil, "")
	assert.Error(t, err)
}

func TestPHPassEncode64Length(t *testing.T) {
	assert.Len(t, phpassEncode64(make([]byte, 16)), 22)
	assert.Equal(t, "..", phpassEncode64([]byte{0}))
	assert.Equal(t, "/...", phpassEncode64([]byte{1, 0, 0}))
}

func TestVerifyIteratedDigest(t *testing.T) {
	salt := "NaCl"
	digest := iteratedDigest("secret", salt, "pepper")

	assert.Len(t, digest, 40)
	assert.Equal(t, "9b9537494445f5a1f40b1566d304b34847eef0a5", digest)

	ok, err := verifyIteratedDigest("secret", "$sha$"+digest, &salt, "pepper")
	require.NoError(t, err)
	assert.True(t, ok)

	otherSalt := "KCl"

	assert.NotEqual(t, digest, iteratedDigest("secret", salt, "other"))
	assert.NotEqual(t, digest, iteratedDigest("secret", otherSalt, "pepper"))
	assert.NotEqual(t, digest, iteratedDigest("Secret", salt, "pepper"))

	ok, _ = verifyIteratedDigest("secret", "$sha$"+digest, &otherSalt, "pepper")
	assert.False(t, ok)

	ok, _ = verifyIteratedDigest("secret", "$sha$"+digest, &salt, "")
	assert.False(t, ok)

	ok, err = verifyIteratedDigest("secret", "$s$9b9537494445f5a1f40b1566d304b34847eef0a5", &salt, "pepper")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyIteratedDigest("secret", "$sha$"+digest, nil, "pepper")
	assert.Error(t, err)
	assert.False(t, ok)

	_, err = verifyIteratedDigest("secret", "$sha$", &salt, "pepper")
	assert.Error(t, err)
}

func TestIteratedDigestRounds(t *testing.T) {
	single := iteratedDigestWithRounds("pw", "salt", "pep", 1)
	ten := iteratedDigestWithRounds("pw", "salt", "pep", definitions.IteratedDigestRounds)

	assert.NotEqual(t, single, ten)
	assert.Equal(t, ten, iteratedDigest("pw", "salt", "pep"))
}

func TestVerifyCryptOrPlain(t *testing.T) {
	stored := "$5$cegeasjoos$vPX5AwDqOTGocGjehr7k1IYp6Kt.U4FmMUa.1l6NrzD"

	ok, err := verifyCryptOrPlain("testpassword", stored, nil, "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = verifyCryptOrPlain("wrongpassword", stored, nil, "")
	assert.False(t, ok)

	des := "abA5hjwYqm1.I"

	ok, err = verifyCryptOrPlain("testpassword", des, nil, "")
	require.NoError(t, err)
	assert.True(t, ok)

	// Only the first eight characters are significant.
	ok, _ = verifyCryptOrPlain("testpass", des, nil, "")
	assert.True(t, ok)

	ok, _ = verifyCryptOrPlain("testpasS", des, nil, "")
	assert.False(t, ok)

	// Thirteen letter passwords share the DES-crypt grammar and still match literally.
	assert.Equal(t, definitions.SchemeCrypt, DetectScheme("plainpassword"))

	ok, _ = verifyCryptOrPlain("plainpassword", "plainpassword", nil, "")
	assert.True(t, ok)

	// A stored value that looks like crypt but is a literal password still matches as plain text.
	literal := "$1$not-a-real-hash"

	ok, _ = verifyCryptOrPlain(literal, literal, nil, "")
	assert.True(t, ok)
}

func TestVerifyPlainRejectsHashes(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("other"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, _ := verifyPlain(string(hash), "plainpassword", nil, "")
	assert.False(t, ok)

	ok, _ = verifyPlain("$P$9IQRaTwmfeRo7ud9Fh4E2PdI0S3r.L0", "plainpassword", nil, "")
	assert.False(t, ok)

	ok, _ = verifyPlain("plainpassword", "plainpassword", nil, "")
	assert.True(t, ok)
}

func TestVerifierForUnknownScheme(t *testing.T) {
	ok, err := verifierFor(definitions.SchemeUnknown)("x", "x", nil, "")

	assert.NoError(t, err)
	assert.False(t, ok)
}
