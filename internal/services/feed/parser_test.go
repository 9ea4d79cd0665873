package feed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,"1 Mo","2 Mo","3 Mo","6 Mo","1 Yr","2 Yr","5 Yr","10 Yr","30 Yr"
01/15/2025,4.43,4.42,4.37,4.28,4.19,4.27,4.41,4.66,4.88
01/14/2025,4.44,4.43,4.38,4.29,4.20,4.28,4.42,4.67,4.89
`

func TestParseLatestRow(t *testing.T) {
	asOf, obs, err := Parse([]byte(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "01/15/2025", asOf)
	require.Len(t, obs, 9)

	// Sorted by column order here; spot-check endpoints.
	assert.InDelta(t, 1.0/12, obs[0].Tenor, 1e-12)
	assert.Equal(t, 4.43, obs[0].Rate)
	assert.Equal(t, 30.0, obs[len(obs)-1].Tenor)
	assert.Equal(t, 4.88, obs[len(obs)-1].Rate)
}

func TestParseEmptyDocument(t *testing.T) {
	_, _, err := Parse([]byte(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = Parse([]byte("   \n  "))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParseHeaderOnly(t *testing.T) {
	_, _, err := Parse([]byte(`Date,"1 Mo","2 Mo"`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseNoExtractablePairs(t *testing.T) {
	_, _, err := Parse([]byte("Date,Foo,Bar\n01/15/2025,1.0,2.0\n"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParseDuplicateTenor(t *testing.T) {
	_, _, err := Parse([]byte("Date,\"1 Yr\",\"1 Yr\"\n01/15/2025,4.19,4.20\n"))
	var dup *DuplicateTenorError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1.0, dup.Tenor)
}

func TestParseNegativeRates(t *testing.T) {
	_, obs, err := Parse([]byte("Date,\"1 Yr\",\"10 Yr\"\n03/09/2020,-0.54,0.12\n"))
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, -0.54, obs[0].Rate)
}

func TestParseNonFiniteRate(t *testing.T) {
	_, _, err := Parse([]byte("Date,\"1 Yr\"\n01/15/2025,NaN\n"))
	var inv *InvalidRateError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 1.0, inv.Tenor)

	_, _, err = Parse([]byte("Date,\"1 Yr\"\n01/15/2025,bogus\n"))
	assert.ErrorAs(t, err, &inv)
}

func TestParseSkipsNoDataCells(t *testing.T) {
	_, obs, err := Parse([]byte("Date,\"2 Mo\",\"1 Yr\"\n01/15/2025,ND,4.19\n"))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, 1.0, obs[0].Tenor)
}

func TestParseMalformedCSV(t *testing.T) {
	_, _, err := Parse([]byte("Date,\"1 Yr\n01/15/2025"))
	assert.ErrorIs(t, err, ErrMalformed)
	assert.False(t, errors.Is(err, ErrEmpty))
}
