package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/sslpin/logger"
)

// FileSystem abstracts file lookups so resolution can be tested.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem reads the local disk.
type RealFileSystem struct{}

// Exists reports whether path can be stat'ed.
func (*RealFileSystem) Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// LoadEnv exports the variables in a .env file without overriding existing ones.
func (*RealFileSystem) LoadEnv(p string) error {
	return godotenv.Load(p)
}

// Resolver locates the config.yml and .env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles are the files LoadConfig will read. Empty means none found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths from opts when set and searches the
// usual locations for the rest.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(serviceName))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(serviceName))
	}
	return files
}

func (r *Resolver) first(candidates []string) string {
	for _, c := range candidates {
		if r.FileSystem.Exists(c) {
			return c
		}
	}
	return ""
}

// shortName turns "payments-app" into "app".
func shortName(serviceName string) string {
	if i := strings.LastIndex(serviceName, "-"); i != -1 {
		return serviceName[i+1:]
	}
	return serviceName
}

// parents yields dir under ".", ".." and "../.." so tests run from package
// directories still find repo-level files.
func parents(dir, file string) []string {
	out := make([]string, 0, 3)
	for _, up := range []string{".", "..", "../.."} {
		p := path.Join(up, dir, file)
		if !strings.HasPrefix(p, "..") {
			p = "./" + p
		}
		out = append(out, p)
	}
	return out
}

func configCandidates(serviceName string) []string {
	var out []string
	for _, name := range uniq(serviceName, shortName(serviceName)) {
		out = append(out, parents("cmd/"+name, "config.yml")...)
	}
	out = append(out, parents("config", "config.yml")[:2]...)
	return append(out, "./config.yml", "./config.yaml")
}

func envCandidates(serviceName string) []string {
	var dirs []string
	for _, name := range uniq(serviceName, shortName(serviceName)) {
		dirs = append(dirs, "cmd/"+name, "config/"+name)
	}
	dirs = append(dirs, "config", "")

	var out []string
	for _, file := range []string{".env." + serviceName, ".env"} {
		for _, dir := range dirs {
			out = append(out, parents(dir, file)...)
		}
		out = append(out, file)
	}
	return uniq(out...)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file (optional)
	EnvFile    string // explicit .env file (optional)
	EnvPrefix  string // only bind PREFIX_* variables, prefix stripped (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(p string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = p }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(p string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = p }
}

// WithEnvPrefix restricts env binding to variables named PREFIX_*.
// APP_PINNING_CERTIFICATES then fills pinning.certificates.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(strings.ToUpper(prefix), "_") }
}

// Defaulter is implemented by config structs that fill zero values.
type Defaulter interface {
	ApplyDefaults()
}

// Validator is implemented by config structs that check themselves.
type Validator interface {
	Validate() error
}

// LoadConfig fills cfg from the service's config.yml, its .env file and the
// process environment, later sources winning. When cfg implements Defaulter
// and Validator they run after unmarshalling, in that order.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: &RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(serviceName, lc)
	v := readSources(files, lc)
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}

	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
	}
	if val, ok := cfg.(Validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("invalid config for service %s: %w", serviceName, err)
		}
	}
	return nil
}

// readSources builds a viper instance from the resolved files and the environment.
// Unreadable files are logged and skipped.
func readSources(files ResolvedFiles, lc LoaderConfig) *viper.Viper {
	v := viper.New()
	fs := lc.FileSystem

	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("failed to load config file", logger.Fields(
				"file", files.ConfigFile, logger.FieldError, err.Error(),
			))
		}
	}

	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load env file", logger.Fields(
				"file", files.EnvFile, logger.FieldError, err.Error(),
			))
		}
	}

	v.AutomaticEnv()
	bindEnv(v, lc.EnvPrefix, os.Environ())
	return v
}

// bindEnv maps KEY=value pairs onto every nested key KEY could stand for,
// since an underscore may separate sections or belong to a field name.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if prefix != "" {
			var found bool
			if key, found = strings.CutPrefix(key, prefix+"_"); !found {
				continue
			}
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// generateEnvKeyVariants lists the viper keys an env variable may address.
//
//	PINNING_CERTIFICATES       -> pinning_certificates, pinning.certificates
//	PINNING_TRANSPORT_CERT_DIR -> ..., pinning.transport_cert_dir, pinning.transport.cert_dir
func generateEnvKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	variants := []string{lower, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return uniq(variants...)
}

func uniq(items ...string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
