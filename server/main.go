// Copyright (C) 2026 Christian Rößner
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/config"
	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/log"
	"github.com/croessner/nauthilus-sqlpassdb/server/log/level"
	"github.com/croessner/nauthilus-sqlpassdb/server/monitoring"
	"github.com/croessner/nauthilus-sqlpassdb/server/passdb"
	"github.com/croessner/nauthilus-sqlpassdb/server/svcctx"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

var (
	version   = "dev"
	buildTime = ""
)

const (
	exitOK = iota
	exitAuthFailed
	exitConfigError
	exitLookupError
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// cli bundles the process environment, so that run can be tested without a terminal.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// readPassword reads a password without echo. It is nil if stdin is not a terminal.
	readPassword func() (string, error)
}

type options struct {
	configPath    string
	username      string
	passwordStdin bool
	lookupOnly    bool
	verbosity     config.Verbosity
	logJSON       bool
	logColor      bool
	showVersion   bool

	flags *pflag.FlagSet
}

func main() {
	ctx, cancel := svcctx.GetCtxWithCancel()

	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		c.readPassword = func() (string, error) {
			fmt.Fprint(os.Stderr, "Password: ")

			password, err := term.ReadPassword(int(os.Stdin.Fd()))

			fmt.Fprintln(os.Stderr)

			return string(password), err
		}
	}

	code := c.run(ctx, os.Args[1:])

	cancel()
	os.Exit(code)
}

func (c *cli) parseFlags(args []string) (*options, error) {
	opts := &options{}

	flags := pflag.NewFlagSet("sqlpassdb", pflag.ContinueOnError)
	flags.SetOutput(c.stderr)

	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to the configuration file (yaml, toml or json)")
	flags.StringVarP(&opts.username, "username", "u", "", "Username to check")
	flags.BoolVar(&opts.passwordStdin, "password-stdin", false, "Read the password from the first line of stdin")
	flags.BoolVar(&opts.lookupOnly, "lookup-only", false, "Only load the user data, do not check a password")
	flags.Var(&opts.verbosity, "log-level", "Log level: none, error, warn, info or debug")
	flags.BoolVar(&opts.logJSON, "log-json", false, "Write log lines as JSON")
	flags.BoolVar(&opts.logColor, "log-color", false, "Colorize log lines (default: on if stdout is a terminal)")
	flags.BoolVarP(&opts.showVersion, "version", "V", false, "Print the version and exit")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	opts.flags = flags

	if opts.showVersion {
		return opts, nil
	}

	if opts.configPath == "" {
		return nil, fmt.Errorf("%w: --config", errors.ErrMissingOption)
	}

	if opts.username == "" {
		return nil, fmt.Errorf("%w: --username", errors.ErrMissingOption)
	}

	return opts, nil
}

// setupLogging applies the log section of the file. Flags given on the command line win.
func (c *cli) setupLogging(opts *options, file *config.File) error {
	logConf := file.GetLog()

	verbosity := opts.verbosity
	if !opts.flags.Changed("log-level") {
		if err := verbosity.Set(logConf.GetLevel()); err != nil {
			return err
		}
	}

	formatJSON := opts.logJSON
	if !opts.flags.Changed("log-json") {
		formatJSON = logConf.GetJSON()
	}

	useColor := opts.logColor
	if !opts.flags.Changed("log-color") {
		if configured, isSet := logConf.GetColor(); isSet {
			useColor = configured
		} else if out, ok := c.stdout.(*os.File); ok {
			useColor = log.UseColor(out)
		}
	}

	log.SetupLoggingWriter(c.stderr, verbosity.Level(), formatJSON, useColor, definitions.InstanceName)

	return nil
}

func (c *cli) password(opts *options) (string, error) {
	if opts.passwordStdin {
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && !stderrors.Is(err, io.EOF) {
			return "", err
		}

		return strings.TrimRight(line, "\r\n"), nil
	}

	if c.readPassword == nil {
		return "", fmt.Errorf("%w: stdin is not a terminal, use --password-stdin", errors.ErrMissingOption)
	}

	return c.readPassword()
}

func (c *cli) run(ctx context.Context, args []string) int {
	opts, err := c.parseFlags(args)
	if err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return exitOK
		}

		fmt.Fprintln(c.stderr, "Error:", err)

		return exitConfigError
	}

	if opts.showVersion {
		fmt.Fprintf(c.stdout, "sqlpassdb %s %s\n", version, buildTime)

		return exitOK
	}

	file, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(c.stderr, "Error:", err)

		return exitConfigError
	}

	if err = c.setupLogging(opts, file); err != nil {
		fmt.Fprintln(c.stderr, "Error:", err)

		return exitConfigError
	}

	telemetry := monitoring.GetTelemetry()
	telemetry.SetProvider(file)
	if err = telemetry.Start(ctx, version); err != nil {
		level.Warn(log.Logger).Log(definitions.LogKeyMsg, "Tracing started without exporter", definitions.LogKeyError, err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), definitions.TelemetryShutdownTimeout)
		defer cancel()

		telemetry.Shutdown(shutdownCtx)
	}()

	verifier, err := passdb.New(file.GetPassDB())
	if err != nil {
		level.Error(log.Logger).Log(definitions.LogKeyMsg, "Unable to create verifier", definitions.LogKeyError, err)

		if stderrors.Is(err, errors.ErrSQLConfig) || stderrors.Is(err, errors.ErrUnsupportedSQLDriver) {
			return exitConfigError
		}

		return exitLookupError
	}

	defer verifier.Close()

	var userData *passdb.UserData

	if opts.lookupOnly {
		userData, err = verifier.LoadUserData(ctx, opts.username)
	} else {
		var password string

		if password, err = c.password(opts); err != nil {
			fmt.Fprintln(c.stderr, "Error:", err)

			return exitConfigError
		}

		userData, err = verifier.Validate(ctx, opts.username, password)
	}

	if err != nil {
		if cause := context.Cause(ctx); stderrors.Is(cause, svcctx.ErrInterrupted) {
			err = cause
		}

		fmt.Fprintln(c.stderr, "Error:", err)

		return exitLookupError
	}

	if userData == nil {
		if opts.lookupOnly {
			fmt.Fprintln(c.stderr, "User not found")
		} else {
			fmt.Fprintln(c.stderr, "Authentication failed")
		}

		return exitAuthFailed
	}

	encoder := json.NewEncoder(c.stdout)
	encoder.SetIndent("", "  ")

	if err = encoder.Encode(userData); err != nil {
		fmt.Fprintln(c.stderr, "Error:", err)

		return exitLookupError
	}

	return exitOK
}
