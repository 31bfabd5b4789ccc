package voxview

import "path/filepath"

// ConvertToAbsolute returns an absolute path, treating a relative path as
// relative to the given directory.
func ConvertToAbsolute(path, dir string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(filepath.Join(dir, path))
}
