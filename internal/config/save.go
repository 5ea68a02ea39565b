package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileMode = 0o600
	configDirMode  = 0o700
	tempPattern    = ".config-*.toml.tmp"
)

// SetValue parses raw per the option's registered type and writes it
// into the config file, creating the file if needed. Unknown keys are
// rejected so typos don't silently land in the file.
func SetValue(keyPath, raw string) error {
	opt, ok := LookupOption(keyPath)
	if !ok {
		return fmt.Errorf("unknown config key %q", keyPath)
	}

	value, err := parseOptionValue(opt, raw)
	if err != nil {
		return err
	}

	path, err := FilePath()
	if err != nil {
		return err
	}

	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	setNested(doc, strings.Split(keyPath, "."), value)

	return writeDocument(path, doc)
}

// UnsetValue removes a key from the config file, falling back to the
// default on the next load.
func UnsetValue(keyPath string) error {
	if _, ok := LookupOption(keyPath); !ok {
		return fmt.Errorf("unknown config key %q", keyPath)
	}

	path, err := FilePath()
	if err != nil {
		return err
	}

	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	deleteNested(doc, strings.Split(keyPath, "."))

	return writeDocument(path, doc)
}

func parseOptionValue(opt OptionMetadata, raw string) (any, error) {
	switch opt.Type {
	case OptionTypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("config key %q expects a bool, got %q", opt.KeyPath, raw)
		}
		return v, nil
	case OptionTypeInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("config key %q expects an int, got %q", opt.KeyPath, raw)
		}
		if opt.Bounds != nil && (v < opt.Bounds.Min || v > opt.Bounds.Max) {
			return nil, fmt.Errorf("config key %q must be between %d and %d, got %d",
				opt.KeyPath, opt.Bounds.Min, opt.Bounds.Max, v)
		}
		return v, nil
	default:
		return raw, nil
	}
}

func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return doc, nil
}

func setNested(doc map[string]any, keys []string, value any) {
	for _, key := range keys[:len(keys)-1] {
		child, ok := doc[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			doc[key] = child
		}
		doc = child
	}
	doc[keys[len(keys)-1]] = value
}

func deleteNested(doc map[string]any, keys []string) {
	for _, key := range keys[:len(keys)-1] {
		child, ok := doc[key].(map[string]any)
		if !ok {
			return
		}
		doc = child
	}
	delete(doc, keys[len(keys)-1])
}

func writeDocument(path string, doc map[string]any) error {
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tmp.Chmod(configFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	cleanup = false
	return nil
}
