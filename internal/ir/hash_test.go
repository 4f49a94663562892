package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestDeterminism(t *testing.T) {
	obj := IRObject{
		"path":    IRString("/CMUL7/trackletDistCuts_none/JPsi/OS"),
		"entries": IRInt(2),
	}

	d1, err := Digest(DomainCollection, obj)
	require.NoError(t, err)

	d2, err := Digest(DomainCollection, obj)
	require.NoError(t, err)

	assert.Equal(t, d1, d2, "Digest must be deterministic")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestDigestDomainSeparation(t *testing.T) {
	obj := IRObject{"a": IRInt(1)}

	assert.NotEqual(t,
		MustDigest(DomainCollection, obj),
		MustDigest(DomainTemplate, obj),
		"same content under different domains must not collide")
}

func TestDigestIgnoresKeyInsertionOrder(t *testing.T) {
	a := IRObject{}
	a["x"] = IRInt(1)
	a["y"] = IRInt(2)

	b := IRObject{}
	b["y"] = IRInt(2)
	b["x"] = IRInt(1)

	assert.Equal(t, MustDigest(DomainConfig, a), MustDigest(DomainConfig, b))
}

func TestDigestError(t *testing.T) {
	_, err := Digest(DomainConfig, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), DomainConfig)

	assert.Panics(t, func() { MustDigest(DomainConfig, nil) })
}
