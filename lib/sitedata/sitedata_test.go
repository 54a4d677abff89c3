package sitedata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadProvinceNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "common-data.json")
	err := os.WriteFile(path, []byte(`{
		"provinces": [
			{"code": "PROVINCE-10", "name": "กรุงเทพมหานคร"},
			{"code": "PROVINCE-50", "name": "เชียงใหม่"}
		]
	}`), 0644)
	require.NoError(t, err)

	names, err := LoadProvinceNames(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"10": "กรุงเทพมหานคร",
		"50": "เชียงใหม่",
	}, names)
}

func TestPartyDataRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "party-data.json")
	err := os.WriteFile(path, []byte(`{
		"updatedAt": "2023-05-15",
		"parties": [
			{"code": "PARTY-0005", "name": "ก้าวไกล", "colorPrimary": "#FF6A13", "logo": "PARTY-0005.webp"},
			{"code": "PARTY-0031", "name": "เพื่อไทย"}
		]
	}`), 0644)
	require.NoError(t, err)

	parties, err := LoadPartyData(path)
	require.NoError(t, err)
	require.Len(t, parties.Parties, 2)
	require.Equal(t, "PARTY-0005", parties.Parties[0].Code)
	require.Equal(t, "#FF6A13", parties.Parties[0].ColorPrimary)
	require.Equal(t, "", parties.Parties[1].ColorPrimary)

	// a rewrite must not destroy keys this package does not model
	parties.Parties[1].ColorPrimary = "#E4002B"
	err = SavePartyData(path, parties)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "updatedAt")

	reloaded, err := LoadPartyData(path)
	require.NoError(t, err)
	require.Equal(t, "#E4002B", reloaded.Parties[1].ColorPrimary)
	require.Contains(t, reloaded.Parties[0].extra, "logo")
}
