package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testT *testing.T

// SetT selects the test that NoErr and Err report to.
func SetT(t *testing.T) {
	testT = t
}

// NoErr unwraps a (value, error) pair, failing the test on error.
func NoErr[T any](v T, err error) T {
	require.NoError(testT, err)
	return v
}

// Err asserts that a (value, error) pair carries an error.
func Err[T any](_ T, err error) error {
	require.Error(testT, err)
	return err
}
