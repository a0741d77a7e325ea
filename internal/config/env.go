package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CREDITRISK_"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays CREDITRISK_* variables read through lookup (os.LookupEnv
// when nil). Per-backend overrides use CREDITRISK_<NAME>_MODEL and
// CREDITRISK_<NAME>_BASE_URL with the name upper-cased.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("ADDR", &c.Addr)
	str("MODELS_DIR", &c.ModelsDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("NATS_URL", &c.NATSURL)
	str("NATS_SUBJECT_PREFIX", &c.NATSSubjectPrefix)
	if v, ok := lookup(EnvPrefix + "WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && v != "" {
		c.CORSEnabled = true
		c.CORSOrigins = SplitCSV(v)
	}
	if len(c.Backends) > 0 {
		bs := make([]BackendConfig, len(c.Backends))
		copy(bs, c.Backends)
		for i := range bs {
			key := strings.ToUpper(bs[i].Name) + "_"
			str(key+"MODEL", &bs[i].Model)
			str(key+"BASE_URL", &bs[i].BaseURL)
			str(key+"API_KEY", &bs[i].APIKey)
		}
		c.Backends = bs
	}
	return c, nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empty
// items.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
