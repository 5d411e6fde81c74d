package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time expresses the upstream call timeout
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Database credentials and the listen port
// are required; upstream URLs and timeouts fall back to the defaults the
// service was built against.
type Config struct {
    Env             string        // application environment (e.g. "dev", "prod")
    Port            string        // HTTP port to listen on
    DBUser          string        // database username
    DBPass          string        // database password (optional)
    DBHost          string        // database host address
    DBPort          string        // database port number
    DBName          string        // database name
    CountriesAPIURL string        // upstream country directory endpoint
    ExchangeAPIURL  string        // upstream exchange-rate endpoint
    UpstreamTimeout time.Duration // per-call timeout for upstream fetches
    CacheDir        string        // directory holding the generated summary image
}

const (
    defaultCountriesAPIURL = "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"
    defaultExchangeAPIURL  = "https://open.er-api.com/v6/latest/USD"
)

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),      // environment (dev/test/prod)
        Port:            must("APP_PORT"),     // port to bind the HTTP server
        DBUser:          must("DB_USER"),      // database user
        DBPass:          os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:          must("DB_HOST"),      // database host
        DBPort:          must("DB_PORT"),      // database port
        DBName:          must("DB_NAME"),      // database name
        CountriesAPIURL: getenv("COUNTRIES_API_URL", defaultCountriesAPIURL),
        ExchangeAPIURL:  getenv("EXCHANGE_API_URL", defaultExchangeAPIURL),
        UpstreamTimeout: time.Duration(atoiDefault("UPSTREAM_TIMEOUT_SEC", 30)) * time.Second,
        CacheDir:        getenv("CACHE_DIR", "cache"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// atoiDefault reads an integer environment variable, returning def when
// the variable is unset.  A value that is set but not a valid integer is
// a configuration mistake and halts startup.
func atoiDefault(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
