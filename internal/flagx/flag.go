// Package flagx contains helpers for parsing a subset of command-line flags
// without claiming the whole argument list.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the flags named in allowed, together with their
// values. Both "-f value" and "-f=value" are recognised; a following token
// that starts with "-" is never taken as a value. The result is never nil.
//
//	FilterArgs([]string{"-c", "conf.json", "-x", "1"}, []string{"-c"}) // ["-c" "conf.json"]
func FilterArgs(args []string, allowed []string) []string {
	keep := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		keep[name] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, inline := strings.Cut(arg, "="); inline {
			if keep[name] {
				out = append(out, arg)
			}
			continue
		}

		if !keep[arg] {
			continue
		}
		out = append(out, arg)
		if next := i + 1; next < len(args) && !strings.HasPrefix(args[next], "-") {
			out = append(out, args[next])
			i = next
		}
	}
	return out
}

// SourceFiles extracts the configuration file locations from args:
// the JSON config given by -c/-config and the dotenv file given by -env.
// Missing flags yield empty strings; other arguments are ignored so each
// component can parse its own flags independently.
func SourceFiles(args []string) (jsonPath, envPath string) {
	fs := flag.NewFlagSet("sources", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&jsonPath, "config", "", "path to JSON config file")
	fs.StringVar(&jsonPath, "c", "", "path to JSON config file (short)")
	fs.StringVar(&envPath, "env", "", "path to dotenv file")

	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "-env"}))
	return jsonPath, envPath
}
