package pathfix

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
)

// Discover returns every non-directory entry below root whose base name matches
// pattern, sorted. A missing root yields no files; a root that is not a
// directory or cannot be walked is a discovery error.
func Discover(root, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.ConfigError("invalid pattern").WithContext("pattern", pattern).Build()
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.DiscoveryError(root, err).Build()
	}
	if !info.IsDir() {
		return nil, errors.DiscoveryError(root, fs.ErrInvalid).
			WithContext("reason", "root is not a directory").
			Build()
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.DiscoveryError(root, err).Build()
	}

	sort.Strings(files)
	return files, nil
}
