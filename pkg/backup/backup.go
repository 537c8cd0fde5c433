// Package backup captures desktop settings to a flat file before the theme
// is applied, and replays them verbatim when the package is removed.
//
// The file holds one entry per line in "schema key value" form. The value is
// the settings store's own serialized output and may contain spaces, quotes
// or brackets; it is treated as an opaque payload from the first character
// after the key's trailing delimiter to the end of the line.
package backup

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
	"github.com/nocturne-theme/nocturne-hook/pkg/gsettings"
	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
	"github.com/nocturne-theme/nocturne-hook/pkg/manifest"
)

// Entry is one captured setting.
type Entry struct {
	Schema string
	Key    string
	Value  string
}

// Line renders the entry in backup-file form.
func (e Entry) Line() string {
	return e.Schema + " " + e.Key + " " + e.Value
}

// ParseLine splits a backup-file line into an Entry. Only the first two
// whitespace runs delimit fields; everything after the second run is the
// value, preserved byte-for-byte.
func ParseLine(line string) (Entry, error) {
	schema, rest, ok := cutToken(line)
	if !ok {
		return Entry{}, errors.Newf(errors.ErrBackupParse, "malformed backup line %q", line)
	}
	key, value, ok := cutToken(rest)
	if !ok {
		return Entry{}, errors.Newf(errors.ErrBackupParse, "malformed backup line %q", line)
	}
	return Entry{Schema: schema, Key: key, Value: value}, nil
}

// cutToken splits off the first whitespace-delimited token and returns the
// remainder with its leading delimiter run removed.
func cutToken(s string) (token, rest string, ok bool) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return "", "", false
	}
	token = s[:i]
	rest = strings.TrimLeft(s[i:], " \t")
	if token == "" || rest == "" {
		return "", "", false
	}
	return token, rest, true
}

// CaptureResult reports what Capture wrote.
type CaptureResult struct {
	Captured int
	Skipped  int
}

// Capture queries every manifest setting from the store and writes the
// backup file, creating parent directories and replacing any previous file.
// A setting the store cannot answer is logged and skipped; the capture
// itself proceeds so the install can continue with a partial backup.
func Capture(store gsettings.Store, settings []manifest.Setting, path string) (*CaptureResult, error) {
	logger := logging.GetLogger("backup")
	result := &CaptureResult{}

	var b strings.Builder
	for _, s := range settings {
		value, err := store.Get(s.Schema, s.Key)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("schema", s.Schema).
				Str("key", s.Key).
				Msg("Skipping setting that could not be read")
			result.Skipped++
			continue
		}
		b.WriteString(Entry{Schema: s.Schema, Key: s.Key, Value: value}.Line())
		b.WriteString("\n")
		result.Captured++
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create backup directory for %s", path)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBackupWrite, "failed to write backup file %s", path)
	}

	logger.Info().
		Str("path", path).
		Int("captured", result.Captured).
		Int("skipped", result.Skipped).
		Msg("Captured desktop settings")
	return result, nil
}

// RestoreResult reports what Restore replayed.
type RestoreResult struct {
	Found    bool
	Restored int
	Failed   int
}

// Restore replays every line of the backup file into the store, in file
// order, then deletes the file. A missing file means nothing to restore and
// is not an error. Per-line failures (a schema or key that no longer
// exists) are logged and skipped; the remaining entries are still replayed
// and the file is still deleted.
func Restore(store gsettings.Store, path string) (*RestoreResult, error) {
	logger := logging.GetLogger("backup")
	result := &RestoreResult{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info().Str("path", path).Msg("No settings backup found, nothing to restore")
			return result, nil
		}
		return nil, errors.Wrapf(err, errors.ErrBackupRead, "failed to open backup file %s", path)
	}

	result.Found = true
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		restoreLine(store, line, result, logger)
	}
	scanErr := scanner.Err()
	_ = f.Close()
	if scanErr != nil {
		return nil, errors.Wrapf(scanErr, errors.ErrBackupRead, "failed to read backup file %s", path)
	}

	if err := os.Remove(path); err != nil {
		return result, errors.Wrapf(err, errors.ErrFileAccess, "failed to delete backup file %s", path)
	}

	logger.Info().
		Str("path", path).
		Int("restored", result.Restored).
		Int("failed", result.Failed).
		Msg("Restored desktop settings")
	return result, nil
}

func restoreLine(store gsettings.Store, line string, result *RestoreResult, logger zerolog.Logger) {
	entry, err := ParseLine(line)
	if err != nil {
		logger.Warn().Err(err).Msg("Skipping malformed backup line")
		result.Failed++
		return
	}

	if err := store.Set(entry.Schema, entry.Key, entry.Value); err != nil {
		logger.Warn().
			Err(err).
			Str("schema", entry.Schema).
			Str("key", entry.Key).
			Msg("Failed to restore setting, continuing")
		result.Failed++
		return
	}
	result.Restored++
}
