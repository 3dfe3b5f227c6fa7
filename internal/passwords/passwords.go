package passwords

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Defaults are passwords known to be used in the stock game content.
// The empty password stands for "no password set" and always comes first.
func Defaults() []string {
	return []string{
		"",
		"19474-217316293",
		"dx122DX",
		"84833mmn1",
		"DANGER",
		"Obi-Wan",
		"ax229msjA",
		"beepbeep",
		"decryptionPassword",
		"divingsparrow",
		"dleatrou",
		"password",
		"quinnoq",
		"test",
		"yuna",
	}
}

// LoadFile reads a JSON array of password strings.
// A file holding null yields no passwords.
func LoadFile(path string) ([]string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	var passwords []string
	if err := json.Unmarshal(data, &passwords); err != nil {
		return nil, false, fmt.Errorf("failed to parse password file %s: %w", path, err)
	}
	if passwords == nil {
		return nil, false, nil
	}
	return passwords, true, nil
}

// Collect returns the default passwords followed by the ones from the optional password file.
func Collect(path string, logger *zerolog.Logger) ([]string, error) {
	candidates := Defaults()
	if path == "" {
		return candidates, nil
	}
	extra, ok, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Warn().Str("path", path).Msg("Password file doesn't contain password array, ignoring")
		return candidates, nil
	}
	logger.Info().Str("path", path).Int("count", len(extra)).Msg("Loaded extra passwords")
	return append(candidates, extra...), nil
}
