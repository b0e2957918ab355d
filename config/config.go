// Package config loads the display server configuration from a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds the server's runtime settings.
type Config struct {
	// Host and Port form the TCP listen address for applet connections.
	Host string `json:"host"`
	Port uint16 `json:"port"`

	// DBPath enables frame persistence when non-empty.
	DBPath string `json:"db_path,omitempty"`

	// Refresh is how often the simulator redraws when idle.
	Refresh Duration `json:"refresh,omitempty"`
}

// Duration wraps time.Duration so config files can say "250ms" or "1s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is present. Port 27072
// is the conventional display server port.
func Default() Config {
	return Config{
		Host:    "127.0.0.1",
		Port:    27072,
		Refresh: Duration(time.Second),
	}
}

// Load reads the config at path, falling back to Default when the file does
// not exist. Unknown keys are rejected so typos surface instead of silently
// meaning defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
