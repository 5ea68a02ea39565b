// Package config resolves listform settings from the config file and
// environment. Precedence per key: environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configDirName  = ".listform"
	configFileName = "config"
	configFileType = "toml"
	envPrefix      = "LISTFORM"

	KeyListName          = "list.name"
	KeyDataFile          = "list.dataFile"
	KeyHistoryList       = "list.historyList"
	KeySubmittedField    = "list.submittedField"
	KeyAllowSave         = "form.allowSave"
	KeyAllowDelete       = "form.allowDelete"
	KeyAllowPrint        = "form.allowPrint"
	KeyRequireAttachment = "form.requireAttachment"
	KeyHistoryEnabled    = "form.historyEnabled"
	KeyRedirectDelay     = "form.redirectDelaySeconds"
	KeyDebug             = "log.debug"
	KeyLogFormat         = "log.format"
	KeyLogFile           = "log.file"

	DefaultRedirectDelaySeconds = 2
	MinRedirectDelaySeconds     = 0
	MaxRedirectDelaySeconds     = 30
)

var userHomeDir = os.UserHomeDir

// Settings are the resolved values the rest of the program consumes.
type Settings struct {
	ListName             string
	DataFile             string
	HistoryList          string
	SubmittedField       string
	AllowSave            bool
	AllowDelete          bool
	AllowPrint           bool
	RequireAttachment    bool
	HistoryEnabled       bool
	RedirectDelaySeconds int
	Debug                bool
	LogFormat            string
	LogFile              string
}

// Dir returns the directory holding the config file and defaults.
func Dir() (string, error) {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// FilePath returns the config file location without requiring it to exist.
func FilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName+"."+configFileType), nil
}

// Load reads the config file and environment into Settings. A missing
// config file is not an error; every key has a default. Pass a fresh
// viper.New(); Load configures it fully.
func Load(v *viper.Viper) (Settings, error) {
	if v == nil {
		v = viper.New()
	}

	dir, err := Dir()
	if err != nil {
		return Settings{}, err
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)

	applyDefaults(v, dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	s := Settings{
		ListName:             v.GetString(KeyListName),
		DataFile:             v.GetString(KeyDataFile),
		HistoryList:          v.GetString(KeyHistoryList),
		SubmittedField:       v.GetString(KeySubmittedField),
		AllowSave:            v.GetBool(KeyAllowSave),
		AllowDelete:          v.GetBool(KeyAllowDelete),
		AllowPrint:           v.GetBool(KeyAllowPrint),
		RequireAttachment:    v.GetBool(KeyRequireAttachment),
		HistoryEnabled:       v.GetBool(KeyHistoryEnabled),
		RedirectDelaySeconds: v.GetInt(KeyRedirectDelay),
		Debug:                v.GetBool(KeyDebug),
		LogFormat:            v.GetString(KeyLogFormat),
		LogFile:              v.GetString(KeyLogFile),
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyDefaults(v *viper.Viper, dir string) {
	v.SetDefault(KeyListName, "")
	v.SetDefault(KeyDataFile, filepath.Join(dir, "list.toml"))
	v.SetDefault(KeyHistoryList, "")
	v.SetDefault(KeySubmittedField, "Submitted")
	v.SetDefault(KeyAllowSave, true)
	v.SetDefault(KeyAllowDelete, false)
	v.SetDefault(KeyAllowPrint, false)
	v.SetDefault(KeyRequireAttachment, false)
	v.SetDefault(KeyHistoryEnabled, false)
	v.SetDefault(KeyRedirectDelay, DefaultRedirectDelaySeconds)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogFormat, "human")
	v.SetDefault(KeyLogFile, filepath.Join(dir, "listform.log"))
}

func (s Settings) validate() error {
	if s.RedirectDelaySeconds < MinRedirectDelaySeconds || s.RedirectDelaySeconds > MaxRedirectDelaySeconds {
		return fmt.Errorf("%s must be between %d and %d, got %d",
			KeyRedirectDelay, MinRedirectDelaySeconds, MaxRedirectDelaySeconds, s.RedirectDelaySeconds)
	}
	if s.HistoryEnabled && s.HistoryList == "" {
		return fmt.Errorf("%s requires %s to name the audit list", KeyHistoryEnabled, KeyHistoryList)
	}
	switch s.LogFormat {
	case "human", "json":
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", KeyLogFormat, "human", "json", s.LogFormat)
	}
	return nil
}
