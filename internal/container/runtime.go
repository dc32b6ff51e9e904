// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs conversion tools (markitdown, poppler) inside a
// local docker or podman runtime.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Mount bind-mounts a host directory into the container.
type Mount struct {
	Source   string
	Target   string
	ReadOnly bool
}

func (m Mount) flag() string {
	v := m.Source + ":" + m.Target
	if m.ReadOnly {
		v += ":ro"
	}
	return v
}

// RunOptions are appended to "run --rm -i". Args follow the image name.
type RunOptions struct {
	Mounts []Mount
	Args   []string

	// Offline runs the container with networking disabled. Converters only
	// read mounted files and stdin.
	Offline bool
}

// Runtime provides container operations: checking availability, verifying
// images, and running containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available() bool

	// ImageExists checks whether the named image exists locally.
	ImageExists(image string) error

	// Run executes a container from image, piping stdin and stdout. A nil
	// stdin sends nothing.
	Run(ctx context.Context, image string, opts RunOptions, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// runtime implements Runtime for a specific container binary. Docker and
// Podman differ only in binary name and the image check subcommand.
type runtime struct {
	bin           string
	imageCheckCmd []string
	exec          executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) ImageExists(image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

// runArgs builds the argument list for a run invocation.
func runArgs(image string, opts RunOptions) []string {
	args := []string{"run", "--rm", "-i"}
	if opts.Offline {
		args = append(args, "--network", "none")
	}
	for _, m := range opts.Mounts {
		args = append(args, "-v", m.flag())
	}
	args = append(args, image)
	return append(args, opts.Args...)
}

func (r *runtime) Run(ctx context.Context, image string, opts RunOptions, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	if err := r.exec.RunPiped(ctx, r.bin, runArgs(image, opts), stdin, stdout, &stderr); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running %s container %s: %w: %s", r.bin, image, err, msg)
		}
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		exec:          exec,
	}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		exec:          exec,
	}
}

var defaultExec = &osExecutor{}

// DetectRuntime returns the runtime named by preferred ("docker" or
// "podman"), or when preferred is empty the first working one, docker
// first.
func DetectRuntime(preferred string) (Runtime, error) {
	return detectRuntime(defaultExec, preferred)
}

func detectRuntime(exec executor, preferred string) (Runtime, error) {
	candidates := []*runtime{newDockerRuntime(exec), newPodmanRuntime(exec)}
	switch preferred {
	case "":
	case binDocker:
		candidates = candidates[:1]
	case binPodman:
		candidates = candidates[1:]
	default:
		return nil, fmt.Errorf("unknown container runtime %q (valid: %s, %s)", preferred, binDocker, binPodman)
	}

	for _, rt := range candidates {
		if rt.Available() {
			return rt, nil
		}
	}
	if preferred != "" {
		return nil, fmt.Errorf("container runtime %s not found or not operational", preferred)
	}
	return nil, fmt.Errorf("no container runtime available: neither %s nor %s found or operational", binDocker, binPodman)
}
