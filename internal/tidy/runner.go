package tidy

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"time"
)

var versionPattern = regexp.MustCompile(`version (\d+)`)

// Runner invokes the clang-tidy binary.
type Runner struct {
	Binary   string
	BuildDir string
}

// NewRunner constructs a Runner for the given binary and build
// directory (the directory holding compile_commands.json).
func NewRunner(binary, buildDir string) *Runner {
	if binary == "" {
		binary = "clang-tidy"
	}
	return &Runner{Binary: binary, BuildDir: buildDir}
}

// Version probes the clang-tidy major version. Returns 0 when the
// version cannot be determined; callers fall back to the most
// conservative flag spelling.
func (r *Runner) Version(ctx context.Context) int {
	out, err := exec.CommandContext(ctx, r.Binary, "--version").Output()
	if err != nil {
		log.Printf("warning: couldn't get clang-tidy version: %v", err)
		return 0
	}

	match := versionPattern.FindSubmatch(out)
	if match == nil {
		log.Printf("warning: couldn't parse clang-tidy version from %q", out)
		return 0
	}
	version, _ := strconv.Atoi(string(match[1]))
	return version
}

// ConfigArgs picks the config flag for the detected clang-tidy
// version. A config file wins over a checks list; versions before 12
// only understand --config with the default .clang-tidy name.
func (r *Runner) ConfigArgs(ctx context.Context, checks, configFile string) []string {
	if configFile == "" {
		if _, err := os.Stat(".clang-tidy"); err == nil {
			configFile = ".clang-tidy"
		}
	} else if _, err := os.Stat(configFile); err != nil {
		log.Printf("warning: could not find specified config file %q", configFile)
		configFile = ""
	}

	if configFile == "" {
		return []string{"--checks=" + checks}
	}

	if r.Version(ctx) >= 12 {
		return []string{"--config-file=" + configFile}
	}

	if configFile != ".clang-tidy" {
		log.Printf("warning: non-default config file name %q will be ignored; this clang-tidy version expects exactly '.clang-tidy'", configFile)
	}
	return []string{"--config"}
}

// RunInput describes one clang-tidy invocation.
type RunInput struct {
	LineFilter string   // JSON line filter restricting diagnostics to changed lines
	Checks     string   // checks list, used when no config file applies
	ConfigFile string   // explicit clang-tidy config file
	Files      []string // files to analyze
	FixesPath  string   // where to export fixes YAML
}

// Run executes clang-tidy over the given files, exporting fixes to
// input.FixesPath. clang-tidy exits non-zero when it emits warnings,
// so a failed run is logged rather than returned: the fixes file is
// the authoritative outcome.
func (r *Runner) Run(ctx context.Context, input RunInput) error {
	args := []string{"-p=" + r.BuildDir}
	args = append(args, r.ConfigArgs(ctx, input.Checks, input.ConfigFile)...)
	if input.LineFilter != "" {
		args = append(args, "-line-filter="+input.LineFilter)
	}
	args = append(args, input.Files...)
	args = append(args, "--export-fixes="+input.FixesPath)

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	log.Printf("clang-tidy took %s", time.Since(start))

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("clang-tidy: %w", ctx.Err())
		}
		log.Printf("clang-tidy failed: %v\nstderr:\n%s\nstdout:\n%s", err, stderr.String(), stdout.String())
	}
	return nil
}
