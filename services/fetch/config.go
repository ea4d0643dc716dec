package fetch

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"modfetch/lib/configutil"
)

const (
	DefaultConfigPath = "data/modfetch.json5"
	DefaultGamesCache = "data/games-cache.json"
	DefaultHistoryDb  = "data/history.db"
)

// Config is the shape of modfetch.json5. zero values are replaced by the
// defaults, flags override both.
type Config struct {
	DownloadDir       string  `json:"download_dir"`
	Timeout           int     `json:"timeout"`
	Retries           int     `json:"retries"`
	RefreshGamesCache bool    `json:"refresh_games_cache"`
	SteamFallback     bool    `json:"steam_fallback"`
	FormDelaySeconds  float64 `json:"form_delay_seconds"`
	GamesCache        string  `json:"games_cache"`
	HistoryDb         string  `json:"history_db"`
}

func DefaultConfig() Config {
	downloadDir := "downloads"
	home, err := os.UserHomeDir()
	if err == nil {
		downloadDir = filepath.Join(home, "Downloads")
	}
	return Config{
		DownloadDir:      downloadDir,
		Timeout:          25,
		Retries:          2,
		FormDelaySeconds: 3,
		GamesCache:       DefaultGamesCache,
		HistoryDb:        DefaultHistoryDb,
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// Clamp keeps the timeout within 5..180 seconds and retries within 0..10.
func (c Config) Clamp() Config {
	c.Timeout = clamp(c.Timeout, 5, 180)
	c.Retries = clamp(c.Retries, 0, 10)
	if c.FormDelaySeconds < 0 {
		c.FormDelaySeconds = 0
	}
	return c
}

func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) FormDelay() time.Duration {
	return time.Duration(c.FormDelaySeconds * float64(time.Second))
}

// LoadConfig reads `path` (and its .local override) over the defaults. a
// missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadWithDefaults(path, DefaultConfig())
	if err != nil {
		return Config{}, err
	}
	cfg.DownloadDir = expandHome(cfg.DownloadDir)
	return cfg.Clamp(), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
