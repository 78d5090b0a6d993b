package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups this app's secrets in the OS keychain.
	KeyringService = "newsfetcher"

	marketauxAccount = "marketaux-api-keys"
	envMarketauxKeys = "MARKETAUX_API_KEYS"
)

// ErrCredentialsMissing means no MarketAux keys were found in the keychain
// or the environment.
var ErrCredentialsMissing = errors.New("marketaux api keys not found (set them in keychain or via MARKETAUX_API_KEYS)")

// MarketAuxKeys returns the API key pool, keychain first with an env
// fallback. Keys are comma-separated in both places; blanks and duplicates
// are dropped, order preserved.
func MarketAuxKeys() ([]string, error) {
	var raw string
	if v, err := keyring.Get(KeyringService, marketauxAccount); err == nil {
		raw = v
	}
	if strings.TrimSpace(raw) == "" {
		raw = os.Getenv(envMarketauxKeys)
	}

	keys := splitKeys(raw)
	if len(keys) == 0 {
		return nil, ErrCredentialsMissing
	}
	return keys, nil
}

// SetMarketAuxKeys stores the comma-separated key pool in the keychain.
func SetMarketAuxKeys(commaSeparated string) error {
	if len(splitKeys(commaSeparated)) == 0 {
		return errors.New("no keys given")
	}
	return keyring.Set(KeyringService, marketauxAccount, commaSeparated)
}

// DeleteMarketAuxKeys removes the key pool from the keychain.
func DeleteMarketAuxKeys() error {
	return keyring.Delete(KeyringService, marketauxAccount)
}

func splitKeys(raw string) []string {
	seen := map[string]bool{}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}
