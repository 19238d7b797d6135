// Package flagx lets several independent flag sets share one command line.
// Each loader picks out the flags it owns and parses only those.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the arguments of args that belong to one of the named
// flags, keeping their values. Names are given without leading dashes and
// match both the -name and --name spellings. A separate value is kept only
// when the next argument does not itself look like a flag.
//
//	FilterArgs([]string{"-a", ":8000", "--config=c.json", "-x"}, "a")
//	// []string{"-a", ":8000"}
func FilterArgs(args []string, names ...string) []string {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, inline := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !owned[name] {
			continue
		}
		out = append(out, arg)

		if !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigPath returns the JSON config file named by -c or -config in args,
// or "" when neither is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (shorthand)")
	_ = fs.Parse(FilterArgs(args, "c", "config"))

	return path
}
