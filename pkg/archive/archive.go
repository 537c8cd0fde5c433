// Package archive snapshots user directories into timestamped tar.gz files
// before the theme overwrites them, and puts them back on removal.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
)

// TimestampFormat tags archive names with second granularity, enough to
// keep names unique within one install run.
const TimestampFormat = "20060102150405"

// Name returns the archive filename for a directory snapshot taken at ts.
func Name(dir string, ts time.Time) string {
	return fmt.Sprintf("%s-%s.tar.gz", filepath.Base(dir), ts.Format(TimestampFormat))
}

// Snapshot archives dir into backupDir. When dir does not exist it is
// created empty instead, so install always leaves the directory present.
// Returns the archive path, or "" when no archive was taken.
func Snapshot(dir, backupDir string, now time.Time) (string, error) {
	logger := logging.GetLogger("archive")

	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", dir)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
		}
		logger.Info().Str("dir", dir).Msg("Directory absent, created empty")
		return "", nil
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create backup directory %s", backupDir)
	}

	archivePath := filepath.Join(backupDir, Name(dir, now))
	if err := Create(dir, archivePath); err != nil {
		return "", err
	}

	logger.Info().Str("dir", dir).Str("archive", archivePath).Msg("Snapshotted directory")
	return archivePath, nil
}

// Create writes a tar.gz of dir, rooted at the directory's basename so
// extraction into the parent recreates the tree in place.
func Create(dir, archivePath string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchiveCreate, "failed to create %s", archivePath)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	parent := filepath.Dir(dir)
	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			src, err := os.Open(path)
			if err != nil {
				return err
			}
			_, err = io.Copy(tw, src)
			src.Close()
			return err
		}
		return nil
	})
	if walkErr != nil {
		tw.Close()
		gz.Close()
		return errors.Wrapf(walkErr, errors.ErrArchiveCreate, "failed to archive %s", dir)
	}

	if err := tw.Close(); err != nil {
		gz.Close()
		return errors.Wrapf(err, errors.ErrArchiveCreate, "failed to finalize %s", archivePath)
	}
	if err := gz.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrArchiveCreate, "failed to finalize %s", archivePath)
	}
	return nil
}

// Extract unpacks an archive into destParent. Entries escaping the
// destination are rejected.
func Extract(archivePath, destParent string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchiveExtract, "failed to open %s", archivePath)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchiveExtract, "not a gzip archive: %s", archivePath)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	cleanDest := filepath.Clean(destParent)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchiveExtract, "corrupt archive %s", archivePath)
		}

		target := filepath.Join(cleanDest, filepath.FromSlash(hdr.Name))
		if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return errors.Newf(errors.ErrArchiveExtract, "archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return errors.Wrapf(err, errors.ErrArchiveExtract, "failed to create %s", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrArchiveExtract, "failed to create %s", filepath.Dir(target))
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return errors.Wrapf(err, errors.ErrArchiveExtract, "failed to create %s", target)
			}
			_, copyErr := io.Copy(out, tr)
			closeErr := out.Close()
			if copyErr != nil {
				return errors.Wrapf(copyErr, errors.ErrArchiveExtract, "failed to extract %s", target)
			}
			if closeErr != nil {
				return errors.Wrapf(closeErr, errors.ErrArchiveExtract, "failed to extract %s", target)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrArchiveExtract, "failed to create %s", filepath.Dir(target))
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errors.Wrapf(err, errors.ErrArchiveExtract, "failed to link %s", target)
			}
		default:
			logger := logging.GetLogger("archive")
			logger.Warn().
				Str("entry", hdr.Name).
				Uint8("type", uint8(hdr.Typeflag)).
				Msg("Skipping unsupported archive entry")
		}
	}
}

// RestoreResult reports what RestoreDir applied.
type RestoreResult struct {
	Applied []string
	Skipped bool
}

// RestoreDir deletes the live directory and re-extracts every matching
// archive from backupDir, oldest first, so the newest snapshot wins for any
// overlapping file. Applied archives are deleted. A missing backup
// directory skips silently.
func RestoreDir(dir, backupDir string) (*RestoreResult, error) {
	logger := logging.GetLogger("archive")
	result := &RestoreResult{}

	if _, err := os.Stat(backupDir); err != nil {
		if os.IsNotExist(err) {
			logger.Info().Str("backupDir", backupDir).Msg("No backup directory, skipping restore")
			result.Skipped = true
			return result, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", backupDir)
	}

	matches, err := filepath.Glob(filepath.Join(backupDir, filepath.Base(dir)+"-*.tar.gz"))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "bad archive pattern for %s", dir)
	}
	sortByTimestamp(matches, filepath.Base(dir))

	if err := os.RemoveAll(dir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to remove live copy %s", dir)
	}

	for _, match := range matches {
		if err := Extract(match, filepath.Dir(dir)); err != nil {
			logger.Warn().Err(err).Str("archive", match).Msg("Failed to extract archive, continuing")
			continue
		}
		if err := os.Remove(match); err != nil {
			logger.Warn().Err(err).Str("archive", match).Msg("Failed to delete applied archive")
		}
		result.Applied = append(result.Applied, match)
	}

	logger.Info().
		Str("dir", dir).
		Int("applied", len(result.Applied)).
		Msg("Restored directory from archives")
	return result, nil
}

// sortByTimestamp orders archive paths by the timestamp embedded in their
// names, ascending. Names whose timestamp does not parse sort after all
// parsable ones, in name order, so application stays deterministic either
// way.
func sortByTimestamp(paths []string, base string) {
	sort.SliceStable(paths, func(i, j int) bool {
		ti, oki := parseTimestamp(paths[i], base)
		tj, okj := parseTimestamp(paths[j], base)
		switch {
		case oki && okj:
			return ti.Before(tj)
		case oki:
			return true
		case okj:
			return false
		default:
			return paths[i] < paths[j]
		}
	})
}

func parseTimestamp(path, base string) (time.Time, bool) {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".tar.gz")
	stamp := strings.TrimPrefix(name, base+"-")
	ts, err := time.Parse(TimestampFormat, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
