package object_test

import (
	"testing"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTripsBlob(t *testing.T) {
	hash := githash.NewSHA1()
	o := object.New(hash, object.KindBlob, []byte("hello world"))

	parsed, err := object.Parse(hash, o.Framed())
	require.NoError(t, err)
	require.Equal(t, o.Kind(), parsed.Kind())
	require.Equal(t, o.Bytes(), parsed.Bytes())
	require.Equal(t, o.ID().String(), parsed.ID().String())
}

func TestParseRejectsSizeMismatch(t *testing.T) {
	hash := githash.NewSHA1()
	framed := []byte("blob 999\x00short")
	_, err := object.Parse(hash, framed)
	require.ErrorIs(t, err, object.ErrSizeMismatch)
}

func TestParseRejectsUnknownKind(t *testing.T) {
	hash := githash.NewSHA1()
	framed := []byte("frobnicate 5\x00hello")
	_, err := object.Parse(hash, framed)
	require.ErrorIs(t, err, object.ErrInvalidObject)
}

func TestHashObjectKnownVectors(t *testing.T) {
	hash := githash.NewSHA1()

	empty := object.New(hash, object.KindBlob, []byte(""))
	require.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", empty.ID().String())

	hw := object.New(hash, object.KindBlob, []byte("hello world"))
	require.Equal(t, "95d09f2b10159347eece71399a7e2e907ea3df4f", hw.ID().String())
}

func TestSha1OfEmptyString(t *testing.T) {
	hash := githash.NewSHA1()
	require.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", hash.Sum([]byte("")).String())
}

func TestSha1OfHelloWorld(t *testing.T) {
	hash := githash.NewSHA1()
	require.Equal(t, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", hash.Sum([]byte("hello world")).String())
}
