package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Read parses the json5 config file at `path` into T. A sibling
// `<name>.local.<ext>` file, if present, is merged on top so machine-local
// overrides never have to touch the checked-in config. Returns
// os.ErrNotExist when neither file exists.
func Read[T any](path string) (T, error) {
	var out T

	base, err := readInto(path, &out)
	if err != nil {
		return out, err
	}

	local := localPath(path)
	var override T
	hasLocal, err := readInto(local, &override)
	if err != nil {
		return out, err
	}
	if hasLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merged local config overrides", "path", local)
	}

	if !base && !hasLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively behaves like Read but walks up the directory tree from the
// working directory until a config with the given name is found.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		out, err := Read[T](filepath.Join(dir, name))
		if os.IsNotExist(err) {
			parent := filepath.Dir(dir)
			if parent == dir {
				return zero, os.ErrNotExist
			}
			dir = parent
			continue
		}
		return out, err
	}
}

func readInto[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

func localPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}
