// Package store is a JSON-file-backed record store for the bot's user
// content: files, notes, screenshots, videos, saved image picks, and per-game
// settings. Records are opaque JSON objects filed under a named category; the
// image pipeline never looks inside them.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Record is an arbitrary JSON-serializable item.
type Record map[string]any

// Known top-level categories. game_settings records are additionally sub-keyed
// by a game name.
const (
	Files           = "files"
	Avatars         = "avatars"
	GameSettings    = "game_settings"
	Screenshots     = "screenshots"
	Videos          = "videos"
	Notes           = "notes"
	WallpapersPC    = "wallpapers_pc"
	WallpapersPhone = "wallpapers_phone"
)

// DefaultGames are the games pre-seeded into the settings section.
var DefaultGames = []string{"CS2", "Standoff 2", "Valorant"}

type fileData struct {
	Categories   map[string][]Record `json:"categories"`
	GameSettings map[string][]Record `json:"game_settings"`
}

// Store persists records to a single JSON file, rewritten after every
// mutation. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	data fileData
}

// Open loads the store at path, creating an empty one if the file does not
// exist. A corrupt file is an error, not silently discarded.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: fileData{
			Categories:   make(map[string][]Record),
			GameSettings: make(map[string][]Record),
		},
	}
	for _, g := range DefaultGames {
		s.data.GameSettings[g] = nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}
	if s.data.Categories == nil {
		s.data.Categories = make(map[string][]Record)
	}
	if s.data.GameSettings == nil {
		s.data.GameSettings = make(map[string][]Record)
	}
	return s, nil
}

// Add files a record under category. For GameSettings, game selects the
// per-game bucket.
func (s *Store) Add(category string, item Record, game string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == GameSettings && game != "" {
		s.data.GameSettings[game] = append(s.data.GameSettings[game], item)
	} else {
		s.data.Categories[category] = append(s.data.Categories[category], item)
	}
	return s.flush()
}

// List returns the records in a category, oldest first. The returned slice is
// a copy.
func (s *Store) List(category, game string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var src []Record
	if category == GameSettings && game != "" {
		src = s.data.GameSettings[game]
	} else {
		src = s.data.Categories[category]
	}
	out := make([]Record, len(src))
	copy(out, src)
	return out
}

// Delete removes the record at index. Returns false when the index is out of
// range or the category is empty.
func (s *Store) Delete(category string, index int, game string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == GameSettings && game != "" {
		items := s.data.GameSettings[game]
		if index < 0 || index >= len(items) {
			return false, nil
		}
		s.data.GameSettings[game] = append(items[:index], items[index+1:]...)
	} else {
		items := s.data.Categories[category]
		if index < 0 || index >= len(items) {
			return false, nil
		}
		s.data.Categories[category] = append(items[:index], items[index+1:]...)
	}
	return true, s.flush()
}

// Games lists the game buckets that exist, defaults included.
func (s *Store) Games() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	games := make([]string, 0, len(s.data.GameSettings))
	for g := range s.data.GameSettings {
		games = append(games, g)
	}
	return games
}

// flush rewrites the backing file; callers hold the lock.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
