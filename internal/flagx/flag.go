// Package flagx holds helpers for layered configuration: picking a subset of
// flags out of os.Args so that each configuration layer parses only what it owns.
package flagx

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// FilterArgs returns the arguments from args that belong to allowedFlags,
// keeping their values. Both "-c conf.json" and "--config=conf.json" forms
// are recognized. The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			// a following token that is not a flag is the value
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// stringFlag parses os.Args for a single string flag known under several names.
// The last occurrence wins; an absent flag yields "".
func stringFlag(usage string, names ...string) string {
	var v string

	allowed := make([]string, 0, len(names))
	for _, n := range names {
		allowed = append(allowed, "-"+n)
	}

	fs := flag.NewFlagSet(names[0], flag.ContinueOnError)
	for _, n := range names {
		fs.StringVar(&v, n, "", usage)
	}
	_ = fs.Parse(FilterArgs(os.Args[1:], allowed))

	return v
}

// JsonConfigFlags returns the config file path given via -c or -config.
func JsonConfigFlags() string {
	return stringFlag("Path to config file", "config", "c")
}

// EnvFileFlag returns the dotenv file path given via -env.
func EnvFileFlag() string {
	return stringFlag("Path to .env file", "env")
}

// LoadEnvFile reads a dotenv file into the process environment without
// overriding variables that are already set. An empty path is a no-op.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	return godotenv.Load(path)
}
