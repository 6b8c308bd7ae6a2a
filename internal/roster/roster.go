// Package roster is the static table of characters the engine can load.
// Unlike move data, the roster never changes at runtime.
package roster

import (
	"fmt"
	"sort"
	"strings"
)

// Loadout limits shared by every character.
const (
	MaxSuperArt = 3
	MaxOutfit   = 7
)

// Character describes one playable character.
type Character struct {
	ID   int    // engine character index
	Name string // name used in move data and start_game
}

var characters = []Character{
	{0, "Alex"},
	{1, "Ryu"},
	{2, "Yun"},
	{3, "Dudley"},
	{4, "Necro"},
	{5, "Hugo"},
	{6, "Ibuki"},
	{7, "Elena"},
	{8, "Oro"},
	{9, "Yang"},
	{10, "Ken"},
	{11, "Sean"},
	{12, "Urien"},
	{13, "Gouki"},
	{14, "Chun-Li"},
	{15, "Makoto"},
	{16, "Q"},
	{17, "Twelve"},
	{18, "Remy"},
}

var byName = func() map[string]Character {
	m := make(map[string]Character, len(characters))
	for _, c := range characters {
		m[strings.ToLower(c.Name)] = c
	}
	return m
}()

// List returns every character ordered by engine ID.
func List() []Character {
	result := make([]Character, len(characters))
	copy(result, characters)
	return result
}

// Names returns the character names sorted alphabetically.
func Names() []string {
	names := make([]string, len(characters))
	for i, c := range characters {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}

// Lookup finds a character by name, ignoring case.
func Lookup(name string) (Character, error) {
	c, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Character{}, fmt.Errorf("roster: unknown character %q", name)
	}
	return c, nil
}

// Exists reports whether name is a known character.
func Exists(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// ByID returns the character with the given engine index.
func ByID(id int) (Character, bool) {
	if id < 0 || id >= len(characters) {
		return Character{}, false
	}
	return characters[id], true
}

// ValidSuperArt reports whether slot is a selectable super-art slot.
func ValidSuperArt(slot int) bool {
	return slot >= 1 && slot <= MaxSuperArt
}

// ValidOutfit reports whether n is a selectable outfit.
func ValidOutfit(n int) bool {
	return n >= 1 && n <= MaxOutfit
}
