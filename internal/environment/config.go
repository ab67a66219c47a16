package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/shlex"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/programme-lv/coderun/internal/lang"
	"github.com/programme-lv/coderun/internal/runner"
	"github.com/programme-lv/coderun/internal/xdg"
)

const appName = "coderun"

type Config struct {
	Paths       lang.Paths
	RunAs       string
	WorkRoot    string
	GraceMargin time.Duration
	CFlags      []string
	MaxParallel int

	NatsUrl     string
	NatsSubject string
	NatsQueue   string

	SqsRequestUrl string
	AwsRegion     string
}

type fileConfig struct {
	RunAs       string `toml:"run_as"`
	WorkRoot    string `toml:"work_root"`
	Grace       string `toml:"grace"`
	CFlags      string `toml:"cflags"`
	MaxParallel int    `toml:"max_parallel"`

	Paths struct {
		Enforcer string `toml:"enforcer"`
		Matlab   string `toml:"matlab"`
		Python2  string `toml:"python2"`
		Python3  string `toml:"python3"`
		Java     string `toml:"java"`
		Javac    string `toml:"javac"`
		Gcc      string `toml:"gcc"`
	} `toml:"paths"`

	Nats struct {
		Url     string `toml:"url"`
		Subject string `toml:"subject"`
		Queue   string `toml:"queue"`
	} `toml:"nats"`

	Sqs struct {
		RequestUrl string `toml:"request_url"`
		Region     string `toml:"region"`
	} `toml:"sqs"`
}

// Load builds the configuration from, in increasing priority: built-in
// defaults, the TOML file at path (or $CODERUN_CONFIG, or config.toml in the
// XDG config directory if it exists), a .env file in the working directory and
// the process environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var fc fileConfig
	if path == "" {
		path = os.Getenv("CODERUN_CONFIG")
	}
	if path == "" {
		def := filepath.Join(xdg.New().AppConfigDir(appName), "config.toml")
		if _, err := os.Stat(def); err == nil {
			path = def
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	overlay(&fc.RunAs, "CODERUN_RUN_AS")
	overlay(&fc.WorkRoot, "CODERUN_WORK_ROOT")
	overlay(&fc.Grace, "CODERUN_GRACE")
	overlay(&fc.CFlags, "CODERUN_CFLAGS")
	overlay(&fc.Paths.Enforcer, "CODERUN_ENFORCER")
	overlay(&fc.Paths.Matlab, "CODERUN_MATLAB")
	overlay(&fc.Paths.Python2, "CODERUN_PYTHON2")
	overlay(&fc.Paths.Python3, "CODERUN_PYTHON3")
	overlay(&fc.Paths.Java, "CODERUN_JAVA")
	overlay(&fc.Paths.Javac, "CODERUN_JAVAC")
	overlay(&fc.Paths.Gcc, "CODERUN_GCC")
	overlay(&fc.Nats.Url, "NATS_URL")
	overlay(&fc.Nats.Subject, "CODERUN_NATS_SUBJECT")
	overlay(&fc.Nats.Queue, "CODERUN_NATS_QUEUE")
	overlay(&fc.Sqs.RequestUrl, "CODERUN_SQS_REQUEST_URL")
	overlay(&fc.Sqs.Region, "AWS_REGION")
	if v := os.Getenv("CODERUN_MAX_PARALLEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CODERUN_MAX_PARALLEL %q: %w", v, err)
		}
		fc.MaxParallel = n
	}

	return fc.resolve()
}

func (fc *fileConfig) resolve() (*Config, error) {
	def := lang.DefaultPaths()
	cfg := &Config{
		Paths: lang.Paths{
			Enforcer: or(fc.Paths.Enforcer, def.Enforcer),
			Matlab:   or(fc.Paths.Matlab, def.Matlab),
			Python2:  or(fc.Paths.Python2, def.Python2),
			Python3:  or(fc.Paths.Python3, def.Python3),
			Java:     or(fc.Paths.Java, def.Java),
			Javac:    or(fc.Paths.Javac, def.Javac),
			Gcc:      or(fc.Paths.Gcc, def.Gcc),
		},
		RunAs:         or(fc.RunAs, runner.DefaultRunAs),
		WorkRoot:      fc.WorkRoot,
		GraceMargin:   runner.DefaultGraceMargin,
		MaxParallel:   fc.MaxParallel,
		NatsUrl:       or(fc.Nats.Url, "nats://127.0.0.1:4222"),
		NatsSubject:   or(fc.Nats.Subject, "coderun.exec"),
		NatsQueue:     or(fc.Nats.Queue, "coderun"),
		SqsRequestUrl: fc.Sqs.RequestUrl,
		AwsRegion:     or(fc.Sqs.Region, "eu-central-1"),
	}

	if fc.Grace != "" {
		d, err := time.ParseDuration(fc.Grace)
		if err != nil {
			return nil, fmt.Errorf("invalid grace margin %q: %w", fc.Grace, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("grace margin must be positive, got %s", d)
		}
		cfg.GraceMargin = d
	}

	if fc.CFlags != "" {
		flags, err := shlex.Split(fc.CFlags)
		if err != nil {
			return nil, fmt.Errorf("invalid cflags %q: %w", fc.CFlags, err)
		}
		cfg.CFlags = flags
	}

	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}

	if cfg.WorkRoot == "" {
		cfg.WorkRoot = xdg.New().AppCacheDir(appName)
	}

	return cfg, nil
}

// RunnerConfig derives the core runner's configuration.
func (c *Config) RunnerConfig() runner.Config {
	return runner.Config{
		Toolchain: lang.Toolchain{
			Paths:    c.Paths,
			Compiler: lang.ExecCompiler{},
			CFlags:   c.CFlags,
		},
		WorkRoot:    c.WorkRoot,
		RunAs:       c.RunAs,
		GraceMargin: c.GraceMargin,
	}
}

// EnsureWorkRoot creates the work root directory if it is missing.
func (c *Config) EnsureWorkRoot() error {
	return xdg.New().EnsureDir(c.WorkRoot)
}

func overlay(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
