package maintenance

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Backup zips the conversations and logs directories into
// BackupDir/backup_<timestamp>.zip and returns the archive path.
func (t *Toolkit) Backup() (string, error) {
	if err := os.MkdirAll(t.paths.BackupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(t.now().UTC().Format("2006-01-02T15:04:05.000Z"))
	path := filepath.Join(t.paths.BackupDir, "backup_"+stamp+".zip")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	zw := zip.NewWriter(f)
	files := 0
	for prefix, dir := range map[string]string{"conversations": t.paths.ConversationsDir, "logs": t.paths.LogDir} {
		n, err := addDir(zw, dir, prefix)
		if err != nil {
			zw.Close()
			f.Close()
			os.Remove(path)
			return "", err
		}
		files += n
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("finish backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}

	t.logger.Info().Str("file", path).Int("files", files).Msg("✅ Backup created")
	return path, nil
}

// addDir copies every regular file under dir into the archive below prefix.
func addDir(zw *zip.Writer, dir, prefix string) (int, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		w, err := zw.Create(filepath.ToSlash(filepath.Join(prefix, rel)))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err := io.Copy(w, src); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("archive %s: %w", prefix, err)
	}
	return count, nil
}
