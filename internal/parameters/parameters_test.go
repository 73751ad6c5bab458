package parameters

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNewFromConfigString(t *testing.T) {
	assert.Empty(t, NewFromConfigString(""))
	params := NewFromConfigString("epsilon=0.1, verbose,name=a=b")
	assert.Equal(t, Params{"epsilon": "0.1", "verbose": "", "name": "a=b"}, params)
}

func TestPopParamOr(t *testing.T) {
	params := NewFromConfigString("epsilon=0.1,steps=3,verbose,name=x")
	eps, err := PopParamOr(params, "epsilon", 0.4)
	require.NoError(t, err)
	assert.Equal(t, 0.1, eps)
	steps, err := PopParamOr(params, "steps", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, steps)
	verbose, err := PopParamOr(params, "verbose", false)
	require.NoError(t, err)
	assert.True(t, verbose)
	missing, err := PopParamOr(params, "discount", 0.9)
	require.NoError(t, err)
	assert.Equal(t, 0.9, missing)

	err = CheckAllConsumed(params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownParameters))
	assert.Contains(t, err.Error(), "name")

	_, err = PopParamOr(params, "name", "")
	require.NoError(t, err)
	assert.NoError(t, CheckAllConsumed(params))
}

func TestParseErrors(t *testing.T) {
	params := NewFromConfigString("epsilon=abc,flag=maybe")
	_, err := GetParamOr(params, "epsilon", 0.4)
	assert.Error(t, err)
	_, err = GetParamOr(params, "flag", false)
	assert.Error(t, err)
	// Failed parsing doesn't remove the key.
	_, err = PopParamOr(params, "epsilon", 0.4)
	assert.Error(t, err)
	assert.Contains(t, params, "epsilon")
}
