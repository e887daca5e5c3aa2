package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

var errUsage = errors.New("usage")

type globalFlags struct {
	name     string
	password string
}

// parseGlobalFlags reads the credentials in front of the command.
func parseGlobalFlags(args []string, login LoginConfig, stderr io.Writer) (globalFlags, []string, error) {
	var g globalFlags

	fs := flag.NewFlagSet("shopctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.name, "u", login.Name, "user name to log in with")
	fs.StringVar(&g.password, "p", login.Password, "password to log in with")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return globalFlags{}, nil, fmt.Errorf("%w: %w", errUsage, err)
	}

	return g, fs.Args(), nil
}

// newFlagSet creates the flag set of one command. Flags and positional arguments
// may be mixed.
func newFlagSet(s *session, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(s.errOut)

	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string

	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %w", errUsage, err)
		}

		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}

		positional = append(positional, args[0])
		args = args[1:]
	}
}

func lookupCommand(args []string) (command, []string, error) {
	if len(args) == 0 {
		return command{}, nil, fmt.Errorf("%w: missing command", errUsage)
	}

	if cmd, ok := commands[args[0]]; ok {
		return cmd, args[1:], nil
	}

	if len(args) > 1 {
		if cmd, ok := commands[args[0]+" "+args[1]]; ok {
			return cmd, args[2:], nil
		}
	}

	return command{}, nil, fmt.Errorf("%w: unknown command %q", errUsage, strings.Join(args[:min(2, len(args))], " "))
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}

	sort.Strings(names)

	fmt.Fprintln(w, "usage: shopctl [-u name -p password] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	for _, name := range names {
		fmt.Fprintf(w, "  %-22s %s\n", name, commands[name].usage)
	}
}

// expectArgs parses args and checks that n positional arguments remain.
func expectArgs(fs *flag.FlagSet, args []string, n int) error {
	pos, err := parseFlags(fs, args)
	if err != nil {
		return err
	}

	if len(pos) != n {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", errUsage, fs.Name(), n, len(pos))
	}

	return nil
}

// oneArg parses args and returns the single positional argument.
func oneArg(fs *flag.FlagSet, args []string, what string) (string, error) {
	pos, err := parseFlags(fs, args)
	if err != nil {
		return "", err
	}

	if len(pos) != 1 {
		return "", fmt.Errorf("%w: %s expects a %s", errUsage, fs.Name(), what)
	}

	return pos[0], nil
}
