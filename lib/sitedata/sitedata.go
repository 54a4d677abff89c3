package sitedata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Province is one entry of common-data.json. Codes look like
// "PROVINCE-10" where the digits match an area code's 2-digit prefix.
type Province struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CommonData struct {
	Provinces []Province `json:"provinces"`
}

// LoadProvinceNames reads common-data.json and returns a map of
// 2-digit province id to display name.
func LoadProvinceNames(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var common CommonData
	err = json.Unmarshal(data, &common)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	names := make(map[string]string, len(common.Provinces))
	for _, p := range common.Provinces {
		names[strings.TrimPrefix(p.Code, "PROVINCE-")] = p.Name
	}
	return names, nil
}

// Party is one entry of party-data.json. The file is shared with the
// published site, so keys this package does not model are preserved
// across a load/save cycle.
type Party struct {
	Code         string
	Name         string
	ColorPrimary string

	extra map[string]json.RawMessage
}

func (p *Party) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	for key, field := range map[string]*string{
		"code":         &p.Code,
		"name":         &p.Name,
		"colorPrimary": &p.ColorPrimary,
	} {
		if value, ok := raw[key]; ok {
			if err := json.Unmarshal(value, field); err != nil {
				return fmt.Errorf("party key %q: %w", key, err)
			}
			delete(raw, key)
		}
	}
	p.extra = raw
	return nil
}

func (p Party) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.extra)+3)
	for k, v := range p.extra {
		out[k] = v
	}
	var err error
	out["code"], err = json.Marshal(p.Code)
	if err != nil {
		return nil, err
	}
	out["name"], err = json.Marshal(p.Name)
	if err != nil {
		return nil, err
	}
	if p.ColorPrimary != "" {
		out["colorPrimary"], err = json.Marshal(p.ColorPrimary)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

type PartyData struct {
	Parties []Party

	extra map[string]json.RawMessage
}

func (d *PartyData) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	if parties, ok := raw["parties"]; ok {
		if err := json.Unmarshal(parties, &d.Parties); err != nil {
			return err
		}
		delete(raw, "parties")
	}
	d.extra = raw
	return nil
}

func (d PartyData) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.extra)+1)
	for k, v := range d.extra {
		out[k] = v
	}
	parties, err := json.Marshal(d.Parties)
	if err != nil {
		return nil, err
	}
	out["parties"] = parties
	return json.Marshal(out)
}

func LoadPartyData(path string) (*PartyData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var parties PartyData
	err = json.Unmarshal(data, &parties)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &parties, nil
}

func SavePartyData(path string, data *PartyData) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0644)
}
