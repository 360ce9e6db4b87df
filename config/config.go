package config

import (
	"flag"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Addr    string
	APIUrl  string
	DBUrl   string
	Timeout time.Duration
	Debug   bool
}

func ParseFlags() (cfg Config, err error) {
	return Parse(flag.CommandLine, os.Args[1:])
}

// Parse reads the command line into a Config. Defaults come from the environment,
// after an optional .env file in the working directory has been loaded into it.
func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	// a missing .env is fine, the process environment is used as is
	_ = godotenv.Load()

	var host string
	fs.StringVar(&host, "host", env("QI_HOST", "127.0.0.1"), "listen host name (default 127.0.0.1)")
	var port uint
	fs.UintVar(&port, "port", envUint("QI_PORT", 8080), "listen port number (default 8080)")
	fs.StringVar(&cfg.APIUrl, "api-url", env("QI_API_URL", "http://localhost:5001"), "base URL of the inspection service")
	fs.StringVar(&cfg.DBUrl, "db-url", env("QI_DB_URL", "inspections.sqlite"), "path to SQLite3 DB file (default inspections.sqlite)")
	var timeout uint
	fs.UintVar(&timeout, "timeout", envUint("QI_TIMEOUT", 30), "remote call timeout in seconds (default 30)")
	fs.BoolVar(&cfg.Debug, "debug", os.Getenv("QI_DEBUG") == "true", "log at DEBUG level")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.Timeout = time.Duration(timeout) * time.Second

	u, perr := url.Parse(cfg.APIUrl)
	switch {
	case perr != nil:
		err = errors.Wrap(perr, "parameter -api-url")
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		err = errors.Errorf("parameter -api-url must be an absolute http(s) URL, got %q", cfg.APIUrl)
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envUint(key string, def uint) uint {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		return def
	}
	return uint(n)
}
