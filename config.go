package deslash

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/deslash/deslash/internal/detect"
	"github.com/deslash/deslash/internal/engine"
)

// SourceVersions lists the grammar versions accepted for --source-version.
// The positional-only marker exists from 3.8 onwards.
var SourceVersions = []string{"3.8", "3.9", "3.10", "3.11", "3.12"}

const (
	// DefaultDecorator is the identifier used for the runtime-check
	// decorator unless configured otherwise.
	DefaultDecorator = "_deslash_decorator"
	// DefaultArchivePath is where original files are archived before
	// conversion.
	DefaultArchivePath = "archive"
	// DefaultConfigFile is the configuration file looked up when no
	// explicit path is given.
	DefaultConfigFile = ".deslash.yaml"

	envPrefix = "DESLASH_"
)

// Config carries one conversion's options. Zero values mean "unset": string
// fields fall back to environment variables, then auto-detection or
// defaults; pointer booleans distinguish an explicit false from unset.
type Config struct {
	// Indentation is the indentation unit ("" = auto detect per file).
	Indentation string `yaml:"indentation,omitempty"`
	// Linesep is the line separator ("" = auto detect per file).
	Linesep string `yaml:"linesep,omitempty"`
	// PEP8 makes code insertion PEP 8 compliant (default true).
	PEP8 *bool `yaml:"pep8,omitempty"`
	// SourceVersion is the grammar version sources are parsed as.
	SourceVersion string `yaml:"source-version,omitempty"`
	// Decorator names the runtime-check decorator.
	Decorator string `yaml:"decorator,omitempty"`
	// Dismiss strips markers without inserting runtime checks.
	Dismiss *bool `yaml:"dismiss,omitempty"`
	// MangleLambdaNames applies class-private mangling to constructs
	// nested inside lambdas within a class body (default true).
	MangleLambdaNames *bool `yaml:"mangle-lambda-names,omitempty"`

	// Filename provides error context; diagnostics only.
	Filename string `yaml:"-"`
}

// DefaultConfig returns the configuration written by `deslash init`.
func DefaultConfig() Config {
	return Config{
		SourceVersion: SourceVersions[len(SourceVersions)-1],
		Decorator:     DefaultDecorator,
	}
}

// LoadConfig reads a yaml configuration file. With an empty path the
// default file is used if present; a missing default file yields the zero
// configuration.
func LoadConfig(path string) (Config, error) {
	var config Config
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) && !explicit {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return config, fmt.Errorf("error parsing configuration file %s: %w", path, err)
	}
	return config, nil
}

var loadDotenv sync.Once

// option value precedence: explicit value > environment variable > default

func envValue(key string) string {
	loadDotenv.Do(func() {
		_ = godotenv.Load()
	})
	return os.Getenv(envPrefix + key)
}

// parseBooleanState maps the usual truthy/falsy spellings; anything else is
// treated as unset.
func parseBooleanState(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		v := true
		return &v
	case "0", "false", "no", "n", "off":
		v := false
		return &v
	}
	return nil
}

func boolOption(explicit *bool, envKey string, dflt bool) bool {
	if explicit != nil {
		return *explicit
	}
	if v := parseBooleanState(envValue(envKey)); v != nil {
		return *v
	}
	return dflt
}

func stringOption(explicit, envKey, dflt string) string {
	if explicit != "" {
		return explicit
	}
	if v := envValue(envKey); v != "" {
		return v
	}
	return dflt
}

// QuietOption resolves the quiet flag (DESLASH_QUIET).
func QuietOption(explicit *bool) bool { return boolOption(explicit, "QUIET", false) }

// DoArchiveOption resolves whether originals are archived before
// conversion (DESLASH_DO_ARCHIVE).
func DoArchiveOption(explicit *bool) bool { return boolOption(explicit, "DO_ARCHIVE", true) }

// ArchivePathOption resolves the archive directory (DESLASH_ARCHIVE_PATH).
func ArchivePathOption(explicit string) string {
	return stringOption(explicit, "ARCHIVE_PATH", DefaultArchivePath)
}

// ConcurrencyOption resolves the worker-pool size (DESLASH_CONCURRENCY);
// zero means auto detection at runtime.
func ConcurrencyOption(explicit int) int {
	if explicit > 0 {
		return explicit
	}
	if v := envValue("CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// ParseLinesep normalizes a line separator spelling: LF, CRLF, CR (any
// case) or the literal separator itself. Empty means auto detect.
func ParseLinesep(s string) (string, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "lf", "\n":
		return "\n", nil
	case "crlf", "\r\n":
		return "\r\n", nil
	case "cr", "\r":
		return "\r", nil
	}
	return "", fmt.Errorf("invalid line separator %q", s)
}

// ParseIndentation normalizes an indentation spelling: a positive integer
// for that many spaces, "t"/"tab" for tabs, or a literal whitespace
// string. Empty means auto detect.
func ParseIndentation(s string) (string, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "t", "tab", "\t":
		return "\t", nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return "", fmt.Errorf("invalid indentation %q", s)
		}
		return strings.Repeat(" ", n), nil
	}
	if strings.Trim(s, " \t") == "" {
		return s, nil
	}
	return "", fmt.Errorf("invalid indentation %q", s)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// resolve layers options (explicit > environment > default), validates
// them, and fills auto-detected values from the source unit.
func (c Config) resolve(source []byte) (engine.Config, error) {
	linesep, err := ParseLinesep(stringOption(c.Linesep, "LINESEP", ""))
	if err != nil {
		return engine.Config{}, err
	}
	if linesep == "" {
		linesep = detect.Linesep(source)
	}

	indentation, err := ParseIndentation(stringOption(c.Indentation, "INDENTATION", ""))
	if err != nil {
		return engine.Config{}, err
	}
	if indentation == "" {
		indentation = detect.Indentation(source)
	}

	version := stringOption(c.SourceVersion, "SOURCE_VERSION", SourceVersions[len(SourceVersions)-1])
	if !validSourceVersion(version) {
		return engine.Config{}, fmt.Errorf("unsupported source version %q (supported: %s)",
			version, strings.Join(SourceVersions, ", "))
	}

	decorator := stringOption(c.Decorator, "DECORATOR", DefaultDecorator)
	if !identifierPattern.MatchString(decorator) {
		return engine.Config{}, fmt.Errorf("name of decorator for runtime checks is not a valid identifier: %q", decorator)
	}
	if strings.HasPrefix(decorator, "__") {
		return engine.Config{}, fmt.Errorf("name of decorator for runtime checks should not start with double underscore")
	}

	mangleLambda := true
	if c.MangleLambdaNames != nil {
		mangleLambda = *c.MangleLambdaNames
	}

	return engine.Config{
		Indentation:         indentation,
		Linesep:             linesep,
		PEP8:                boolOption(c.PEP8, "PEP8", true),
		Filename:            c.Filename,
		Decorator:           decorator,
		Dismiss:             boolOption(c.Dismiss, "DISMISS", false),
		MangleThroughLambda: mangleLambda,
	}, nil
}

func validSourceVersion(v string) bool {
	for _, s := range SourceVersions {
		if s == v {
			return true
		}
	}
	return false
}
