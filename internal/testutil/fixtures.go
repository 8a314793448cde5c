package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SymbolFixture pairs a rendered symbol with the value it should decode to.
type SymbolFixture struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	InputFile   string       `json:"input_file"`
	Expected    string       `json:"expected"`
	Decodable   bool         `json:"decodable"`
	Symbol      SymbolConfig `json:"symbol"`
}

// SampleFixtures returns the canonical synthetic symbols.
func SampleFixtures() []SymbolFixture {
	values := []int{12, 34, 56, 78, 90, 1, 2, 3}

	clean := DefaultSymbolConfig()
	clean.Data = ChunkBits(values...)

	gray := clean
	gray.Dark, gray.Light = 20, 235

	big := DefaultSymbolConfig()
	big.Modules = 13
	big.ModuleSize = 8
	big.Data = ChunkBits(512, 999, 7, 100, 64, 31, 0, 1, 1023, 5, 6, 7)

	tail := DefaultSymbolConfig()
	tail.Modules = 9
	tail.ModuleSize = 12
	tail.Data = ChunkBits(7, 70, 700, 1000) + "0101"

	blank := tail
	blank.Data = ""

	rotated := DefaultSymbolConfig()
	rotated.Rotation = 45

	return []SymbolFixture{
		{
			Name:        "clean_11",
			Description: "11x11 symbol, pure black on white",
			InputFile:   "images/symbols/clean_11.png",
			Expected:    NumericString(values...),
			Decodable:   true,
			Symbol:      clean,
		},
		{
			Name:        "gray_11",
			Description: "11x11 symbol with reduced contrast",
			InputFile:   "images/symbols/gray_11.png",
			Expected:    NumericString(values...),
			Decodable:   true,
			Symbol:      gray,
		},
		{
			Name:        "large_13",
			Description: "13x13 symbol with three-digit groups",
			InputFile:   "images/symbols/large_13.png",
			Expected:    NumericString(512, 999, 7, 100, 64, 31, 0, 1, 1023, 5, 6, 7),
			Decodable:   true,
			Symbol:      big,
		},
		{
			Name:        "tail_9",
			Description: "9x9 symbol ending in a 4-bit group",
			InputFile:   "images/symbols/tail_9.png",
			Expected:    NumericString(7, 70, 700, 1000) + "5",
			Decodable:   true,
			Symbol:      tail,
		},
		{
			Name:        "blank_9",
			Description: "9x9 symbol without data bits",
			InputFile:   "images/symbols/blank_9.png",
			Expected:    NumericString(0, 0, 0, 0) + "0",
			Decodable:   true,
			Symbol:      blank,
		},
		{
			Name:        "rotated_45",
			Description: "11x11 symbol rotated out of the supported orientation",
			InputFile:   "images/symbols/rotated_45.png",
			Symbol:      rotated,
		},
	}
}

// LoadFixture loads a fixture from the testdata fixtures directory.
func LoadFixture(t *testing.T, name string) SymbolFixture {
	t.Helper()

	path := filepath.Join(GetFixturesDir(t), name+".json")
	data, err := os.ReadFile(path) //nolint:gosec // G304: Reading test fixture files with controlled paths
	require.NoError(t, err, "Failed to read fixture file: %s", path)

	var fixture SymbolFixture
	require.NoError(t, json.Unmarshal(data, &fixture), "Failed to unmarshal fixture JSON")
	return fixture
}

// SaveFixture writes a fixture to the testdata fixtures directory.
func SaveFixture(t *testing.T, fixture SymbolFixture) {
	t.Helper()

	require.NoError(t, WriteFixture(GetFixturesDir(t), fixture))
}

// WriteFixture writes fixture as indented JSON into dir.
func WriteFixture(dir string, fixture SymbolFixture) error {
	if err := EnsureDir(dir); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture %s: %w", fixture.Name, err)
	}
	return os.WriteFile(filepath.Join(dir, fixture.Name+".json"), data, 0o600)
}

// GetFixtureInputPath returns the full path to a fixture's input file.
func GetFixtureInputPath(t *testing.T, fixture SymbolFixture) string {
	t.Helper()

	return filepath.Join(GetTestDataDir(t), fixture.InputFile)
}
