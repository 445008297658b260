package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// env reads key and converts it with parse.  Unset, blank or unparsable
// values yield def.
func env[T any](key string, def T, parse func(string) (T, error)) T {
    raw := strings.TrimSpace(os.Getenv(key))
    if raw == "" {
        return def
    }
    v, err := parse(raw)
    if err != nil {
        return def
    }
    return v
}

func envStr(k, d string) string {
    return env(k, d, func(s string) (string, error) { return s, nil })
}

func envInt(k string, d int) int { return env(k, d, strconv.Atoi) }

func envDur(k string, d time.Duration) time.Duration { return env(k, d, time.ParseDuration) }

// envBool also accepts yes/no and on/off.
func envBool(k string, d bool) bool {
    return env(k, d, func(s string) (bool, error) {
        switch strings.ToLower(s) {
        case "1", "true", "yes", "on":
            return true, nil
        case "0", "false", "no", "off":
            return false, nil
        }
        return false, strconv.ErrSyntax
    })
}

// envList splits a comma separated variable, dropping blanks.
func envList(k string) []string {
    var out []string
    for _, part := range strings.Split(os.Getenv(k), ",") {
        if p := strings.TrimSpace(part); p != "" {
            out = append(out, p)
        }
    }
    return out
}
