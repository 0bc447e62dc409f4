package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"wakeboot/internal/deps"
	"wakeboot/internal/hostenv"
	"wakeboot/internal/paths"
	"wakeboot/internal/runner"
	"wakeboot/internal/tools"
	"wakeboot/internal/tui"
	"wakeboot/internal/venv"
)

var (
	checkJSON   bool
	checkStrict bool
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether the project is ready to launch without changing anything",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	cmd.Flags().BoolVar(&checkJSON, "json", false, "Output machine-readable JSON")
	cmd.Flags().BoolVar(&checkStrict, "strict", false, "Fail when any check reports an error")

	return cmd
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

type checkReport struct {
	Project string        `json:"project"`
	Checks  []healthCheck `json:"checks"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, closer := openLogger()
	defer closer.Close()
	logger.Printf("wakeboot check: project=%s", st.paths.Root)
	for _, w := range st.warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	run := newRunner()
	var checks []healthCheck

	profile, inspectErr := hostenv.Inspector{
		Runner:      run,
		Interpreter: st.cfg.Python.Interpreter,
		GOOS:        hostOS,
		GOARCH:      hostArch,
	}.Inspect(ctx)
	checks = append(checks, checkInterpreter(st.cfg.Python.Interpreter, profile, inspectErr))
	checks = append(checks, checkPlatform(profile))
	checks = append(checks, checkTool(ctx, run, tools.Lookup(st.cfg.Tools.Media), profile.OS))

	envCheck, env, provisioned := checkEnvironment(st.paths.EnvDir, profile.OS)
	checks = append(checks, envCheck)
	checks = append(checks, checkDependencies(ctx, run, st, env, provisioned))

	for _, c := range checks {
		logger.Printf("check %s: %s %s", c.Name, c.Status, c.Summary)
	}

	if err := writeCheckResult(cmd, checkReport{Project: st.paths.Root, Checks: checks}); err != nil {
		return err
	}

	if checkStrict {
		for _, c := range checks {
			if c.Status == "error" {
				return errors.New("one or more checks failed")
			}
		}
	}
	return nil
}

func checkInterpreter(name string, profile hostenv.HostProfile, err error) healthCheck {
	c := healthCheck{Name: "python"}
	if err != nil {
		c.Status = "error"
		if runner.IsNotFound(err) {
			c.Summary = fmt.Sprintf("%s not found", name)
		} else {
			c.Summary = err.Error()
		}
		return c
	}
	if err := hostenv.CheckInterpreter(profile.Interpreter); err != nil {
		c.Status = "error"
		c.Summary = err.Error()
		return c
	}
	c.Status = "ok"
	c.Summary = fmt.Sprintf("%s %s", name, profile.Interpreter)
	return c
}

func checkPlatform(profile hostenv.HostProfile) healthCheck {
	c := healthCheck{Name: "platform"}
	verdict := hostenv.Classify(profile.OS, profile.Arch)
	if verdict.Supported() {
		c.Status = "ok"
		c.Summary = verdict.Label
		return c
	}
	c.Status = "error"
	c.Summary = fmt.Sprintf("%s (%s): %s", hostenv.DisplayOS(profile.OS), profile.Machine(), verdict.Reason)
	return c
}

func checkTool(ctx context.Context, run runner.Runner, def tools.Definition, goos string) healthCheck {
	c := healthCheck{Name: def.Name}
	status := tools.Probe(ctx, run, def, goos)
	switch status.State {
	case tools.StatePresent:
		c.Status = "ok"
		c.Summary = status.Version
	case tools.StateProbeError:
		c.Status = "warning"
		c.Summary = fmt.Sprintf("could not be run (%s); %s", status.Error, status.Hint)
	default:
		c.Status = "warning"
		c.Summary = "not installed; " + status.Hint
	}
	return c
}

func checkEnvironment(dir, goos string) (healthCheck, venv.Environment, bool) {
	c := healthCheck{Name: "environment"}
	if goos == "" {
		goos = runtime.GOOS
	}
	exists, err := paths.Exists(dir)
	switch {
	case err != nil:
		c.Status = "error"
		c.Summary = err.Error()
		return c, venv.Environment{}, false
	case !exists:
		c.Status = "warning"
		c.Summary = dir + " not created yet; it will be created on launch"
		return c, venv.Environment{}, false
	}
	c.Status = "ok"
	c.Summary = dir
	return c, venv.Open(dir, goos), true
}

func checkDependencies(ctx context.Context, run runner.Runner, st settings, env venv.Environment, provisioned bool) healthCheck {
	c := healthCheck{Name: "dependencies"}
	if !provisioned {
		if ok, _ := paths.FileExists(st.paths.ManifestFile); !ok {
			c.Status = "error"
			c.Summary = "manifest not found: " + st.paths.ManifestFile
			return c
		}
		c.Status = "warning"
		c.Summary = "will be installed once the environment exists"
		return c
	}

	state, err := deps.Installer{
		Runner:      run,
		Markers:     st.cfg.Dependencies.Markers,
		Fingerprint: st.cfg.Dependencies.Fingerprint,
	}.Check(ctx, env, st.paths.ManifestFile)
	switch {
	case err != nil:
		c.Status = "error"
		c.Summary = err.Error()
	case state.Satisfied:
		c.Status = "ok"
		c.Summary = "installed"
	default:
		c.Status = "warning"
		c.Summary = state.Reason + "; will be installed on launch"
	}
	return c
}

func writeCheckResult(cmd *cobra.Command, report checkReport) error {
	out := cmd.OutOrStdout()
	if checkJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	styles := tui.StylesFor(tui.DetectMode(out, noColor, false), out)
	r := styles.Renderer()
	bold := r.NewStyle().Bold(true).Inline(true)
	green := r.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := r.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := r.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	fmt.Fprintln(out, bold.Render("PROJECT:")+" "+report.Project)
	for _, c := range report.Checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-14s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}
	return nil
}
