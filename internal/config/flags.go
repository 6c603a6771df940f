package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const programName = "dbgen"

// newFlagCommand creates a cobra command carrying the mode flags.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           programName + " (--insert|--dump)",
		Short:         "Insert or dump records of the user data service",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up the mode flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	flags.Bool(string(ModeInsert), false, "Insert a generated user record every interval until interrupted")
	flags.Bool(string(ModeDump), false, "Print every stored user record and exit")
	flags.SetOutput(io.Discard)
}

// PrintUsage writes the usage line and the environment settings that tune a run.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s --%s | --%s\n", programName, ModeInsert, ModeDump)
	fmt.Fprintf(w, "\nFlags:\n%s", usageFlags())
	fmt.Fprintf(w, "\nEnvironment:\n")
	for _, s := range envSettings {
		fmt.Fprintf(w, "  %-28s %s\n", envName(s.key), s.help)
	}
}

func usageFlags() string {
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	configureFlags(fs)
	return fs.FlagUsages()
}

// modeFromFlags resolves the single selected mode.
func modeFromFlags(fs *pflag.FlagSet) (Mode, error) {
	insert, err := fs.GetBool(string(ModeInsert))
	if err != nil {
		return "", err
	}
	dump, err := fs.GetBool(string(ModeDump))
	if err != nil {
		return "", err
	}
	switch {
	case insert && !dump:
		return ModeInsert, nil
	case dump && !insert:
		return ModeDump, nil
	default:
		return "", fmt.Errorf("%w: exactly one of --%s or --%s is required", ErrUsage, ModeInsert, ModeDump)
	}
}
