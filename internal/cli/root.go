package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"wakeboot/internal/launcher"
	"wakeboot/internal/logx"
	"wakeboot/internal/paths"
	"wakeboot/internal/runner"
	"wakeboot/internal/tools"
	"wakeboot/internal/tui"
)

var (
	projectDir  string
	noColor     bool
	assumeYes   bool
	serverHost  string
	serverPort  int
	interpreter string
	fingerprint bool
)

// Seams for tests; production code never reassigns them.
var (
	newRunner = func() runner.Runner { return runner.CmdRunner{} }
	lookupEnv = os.LookupEnv
	hostOS    string
	hostArch  string
)

// exitError carries a process exit status out of a RunE without printing.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the root cobra command and exits with the launcher's status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	var exit exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wakeboot",
		Short: "Prepare the wake word recorder environment and start its server",
		Long: "wakeboot checks the Python interpreter, platform and media tools, creates a\n" +
			"virtual environment, installs the recorder's dependencies and then runs the\n" +
			"web server until it exits or is interrupted.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLaunch,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&projectDir, "project", "", "Path to project directory")
	flags.StringVar(&serverHost, "host", "", "Address the server binds to (default from config, 0.0.0.0)")
	flags.IntVar(&serverPort, "port", 0, "Port the server listens on (default from config, 8000)")
	flags.StringVar(&interpreter, "python", "", "Base Python interpreter used to create the environment")
	flags.BoolVar(&fingerprint, "fingerprint", false, "Also reinstall when requirements.txt changed since the last install")
	flags.BoolVar(&noColor, "no-color", false, "Disable coloured output")

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Continue without prompting when the media tool is missing")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func runLaunch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cfg := st.cfg

	logger, closer := openLogger()
	defer closer.Close()
	logger.Printf("wakeboot: project=%s python=%s env=%s", st.paths.Root, cfg.Python.Interpreter, st.paths.EnvDir)

	out := cmd.OutOrStdout()
	mode := tui.DetectMode(out, noColor, false)
	reporter := tui.NewReporter(out, tui.StylesFor(mode, out))
	for _, w := range st.warnings {
		reporter.Warnf("%s", w)
	}

	l := &launcher.Launcher{
		Options: launcher.Options{
			Paths:       st.paths,
			Interpreter: cfg.Python.Interpreter,
			GOOS:        hostOS,
			GOARCH:      hostArch,
			Tool:        tools.Lookup(cfg.Tools.Media),
			Markers:     cfg.Dependencies.Markers,
			Fingerprint: cfg.Dependencies.Fingerprint,
			Module:      cfg.Server.Module,
			Host:        cfg.Server.Host,
			Port:        cfg.Server.Port,
		},
		Runner:   newRunner(),
		Reporter: reporter,
		Confirm:  tui.NewConfirmer(mode, cmd.InOrStdin(), out, cfg.Tools.AssumeYes),
		Logger:   logger,
		Stdin:    cmd.InOrStdin(),
		Stdout:   out,
		Stderr:   cmd.ErrOrStderr(),
	}

	outcome := l.Run(ctx)
	logger.Printf("wakeboot: outcome state=%s stage=%s exit=%d interrupted=%v err=%v",
		outcome.State, outcome.Stage, outcome.ExitCode, outcome.Interrupted, outcome.Err)
	if outcome.ExitCode != 0 {
		return exitError{code: outcome.ExitCode}
	}
	return nil
}

// openLogger logs to ~/.wakeboot/logs, or to the temp directory when the
// home directory is unusable.
func openLogger() (*log.Logger, io.Closer) {
	dir, err := paths.GlobalLogsDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), "wakeboot-logs")
	}
	return logx.NewOrDiscard(dir)
}
