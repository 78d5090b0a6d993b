package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestMarketAuxKeysFromEnv(t *testing.T) {
	keyring.MockInitWithError(keyring.ErrNotFound)
	t.Setenv("MARKETAUX_API_KEYS", "key1, key2,key1, ,key3")

	keys, err := MarketAuxKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"key1", "key2", "key3"}, keys)
}

func TestMarketAuxKeysFromKeychain(t *testing.T) {
	keyring.MockInit()
	t.Setenv("MARKETAUX_API_KEYS", "env-key")
	require.NoError(t, SetMarketAuxKeys("ring1,ring2"))

	// Keychain wins over the environment.
	keys, err := MarketAuxKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"ring1", "ring2"}, keys)

	require.NoError(t, DeleteMarketAuxKeys())
	keys, err = MarketAuxKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"env-key"}, keys)
}

func TestMarketAuxKeysMissing(t *testing.T) {
	keyring.MockInitWithError(keyring.ErrNotFound)
	t.Setenv("MARKETAUX_API_KEYS", "")

	_, err := MarketAuxKeys()
	assert.ErrorIs(t, err, ErrCredentialsMissing)
}

func TestSplitKeys(t *testing.T) {
	assert.Nil(t, splitKeys(""))
	assert.Nil(t, splitKeys(" , ,"))
	assert.Equal(t, []string{"a", "b"}, splitKeys("a,b,a"))
}
