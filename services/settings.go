package services

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/lborres/careerguide/core"
)

// SettingsStore persists user preferences under app_settings. Stored keys
// this version does not know about are preserved by Merge writes.
type SettingsStore struct {
	storage *Storage
}

func NewSettingsStore(storage *Storage) *SettingsStore {
	return &SettingsStore{storage: storage}
}

// Get returns the stored settings over the defaults. Unreadable settings
// read as the defaults.
func (s *SettingsStore) Get(ctx context.Context) core.Settings {
	settings := core.DefaultSettings()
	if !s.storage.GetItem(ctx, core.KeyAppSettings, &settings) {
		return core.DefaultSettings()
	}
	return settings
}

// Save writes settings. Replace stores exactly settings; Merge lays them
// over whatever is stored.
func (s *SettingsStore) Save(ctx context.Context, settings core.Settings, mode core.WriteMode) error {
	fields, err := toFields(settings)
	if err != nil {
		return err
	}
	return s.write(ctx, fields, mode)
}

// Set changes a single setting by its JSON name.
func (s *SettingsStore) Set(ctx context.Context, key string, value any) error {
	known, err := toFields(core.DefaultSettings())
	if err != nil {
		return err
	}
	if _, ok := known[key]; !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownSetting, key)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidSetting, err)
	}

	// The value must decode into the field's type.
	probe := core.DefaultSettings()
	if err := json.Unmarshal(singleField(key, raw), &probe); err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrInvalidSetting, key, err)
	}

	return s.write(ctx, map[string]json.RawMessage{key: raw}, core.Merge)
}

func (s *SettingsStore) write(ctx context.Context, fields map[string]json.RawMessage, mode core.WriteMode) error {
	next := fields
	if mode == core.Merge {
		current := map[string]json.RawMessage{}
		if _, err := s.storage.Load(ctx, core.KeyAppSettings, &current); err != nil {
			return err
		}
		if current == nil {
			current = map[string]json.RawMessage{}
		}
		maps.Copy(current, fields)
		next = current
	}
	return s.storage.Put(ctx, core.KeyAppSettings, next)
}

func toFields(settings core.Settings) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func singleField(key string, value json.RawMessage) []byte {
	obj, _ := json.Marshal(map[string]json.RawMessage{key: value})
	return obj
}
