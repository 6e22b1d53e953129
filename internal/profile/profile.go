package profile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the runtime configuration of the conversion engine: where the
// immutable system artifacts live and where the per-user learning data goes.
type Profile struct {
	// Mode can be "prod" or "dev".
	Mode string
	// Data is the directory holding the system artifacts.
	Data string
	// UserLMDir holds the user language model text files.
	UserLMDir string
	Version   string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// UnigramLMPath is the system unigram trie inside the data dir.
func (p *Profile) UnigramLMPath() string {
	return filepath.Join(p.Data, "lm_v2_1gram.trie")
}

// BigramLMPath is the system bigram trie inside the data dir.
func (p *Profile) BigramLMPath() string {
	return filepath.Join(p.Data, "lm_v2_2gram.trie")
}

// SystemDictPath is the normal binary dictionary inside the data dir.
func (p *Profile) SystemDictPath() string {
	return filepath.Join(p.Data, "system_dict.trie")
}

// SingleTermDictPath is the single-term binary dictionary inside the data dir.
func (p *Profile) SingleTermDictPath() string {
	return filepath.Join(p.Data, "single_term.trie")
}

// UserUnigramPath is the user unigram count file.
func (p *Profile) UserUnigramPath() string {
	return filepath.Join(p.UserLMDir, "unigram.txt")
}

// UserBigramPath is the user bigram count file.
func (p *Profile) UserBigramPath() string {
	return filepath.Join(p.UserLMDir, "bigram.txt")
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables. The user LM
// directory follows the XDG convention: $XDG_CONFIG_HOME, falling back to
// $HOME/.config, then kanaconv/user_language_model under it.
func (p *Profile) FromEnv() {
	if p.Mode == "" {
		p.Mode = getEnvOrDefault("KANACONV_MODE", "prod")
	}
	if p.Data == "" {
		p.Data = getEnvOrDefault("KANACONV_DATA", "/usr/share/kanaconv/data")
	}
	if p.UserLMDir == "" {
		p.UserLMDir = getEnvOrDefault("KANACONV_USER_LM_DIR", defaultUserLMDir())
	}
}

func defaultUserLMDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "kanaconv", "user_language_model")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the data dir and creates the user LM dir if missing.
func (p *Profile) Validate() error {
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if err := os.MkdirAll(p.UserLMDir, 0o700); err != nil {
		return errors.Wrapf(err, "unable to create user LM dir %s", p.UserLMDir)
	}
	return nil
}
