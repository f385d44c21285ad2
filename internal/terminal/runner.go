// Package terminal runs shell commands for the embedded terminal pane and
// models the pane's input loop.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// maxLineBytes bounds a single output line; longer lines are split into
// pieces of this size.
const maxLineBytes = 1024 * 1024

// Stream tags where an output line came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
	System // prompt echo and status lines written by the session itself
)

func (s Stream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "system"
	}
}

// Line is one line of terminal output.
type Line struct {
	Stream Stream
	Text   string
}

// Runner is the subprocess boundary.
type Runner interface {
	Start(ctx context.Context, command, dir string) (*Process, error)
}

// Process is a running command. Lines delivers stdout and stderr lines as
// they arrive and is closed once the process has exited and both streams are
// drained; ExitCode and Err are valid after that.
type Process struct {
	lines  chan Line
	cancel context.CancelFunc

	exitCode int
	err      error
}

// Lines returns the output channel.
func (p *Process) Lines() <-chan Line { return p.lines }

// ExitCode returns the process exit code, or -1 if it did not exit normally.
func (p *Process) ExitCode() int { return p.exitCode }

// Err returns a wait error that carried no exit code.
func (p *Process) Err() error { return p.err }

// Kill stops the process.
func (p *Process) Kill() {
	if p.cancel != nil {
		p.cancel()
	}
}

// NewProcess returns a Process fed by the caller. Used by Runner
// implementations other than ShellRunner.
func NewProcess(buffer int) (*Process, func(Line), func(code int, err error)) {
	p := &Process{lines: make(chan Line, buffer)}
	send := func(l Line) { p.lines <- l }
	finish := func(code int, err error) {
		p.exitCode = code
		p.err = err
		close(p.lines)
	}
	return p, send, finish
}

// ShellRunner runs commands through `<shell> -c`.
type ShellRunner struct {
	Shell string
	Env   []string // extra KEY=VALUE pairs appended to the inherited environment
}

// NewShellRunner returns a runner for shell, falling back to $SHELL then sh.
func NewShellRunner(shell string) *ShellRunner {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "sh"
	}
	return &ShellRunner{Shell: shell}
}

// Start spawns command in dir.
func (r *ShellRunner) Start(ctx context.Context, command, dir string) (*Process, error) {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, r.Shell, "-c", command)
	cmd.Dir = dir
	setProcessGroup(cmd)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, err
	}

	p := &Process{lines: make(chan Line, 64), cancel: cancel}

	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(stdout, Stdout, p.lines, &wg)
	go scanLines(stderr, Stderr, p.lines, &wg)

	go func() {
		// Pipes must be drained before Wait closes them.
		wg.Wait()
		waitErr := cmd.Wait()
		p.exitCode = ExitCode(waitErr)
		if p.exitCode < 0 {
			p.err = waitErr
		}
		cancel()
		close(p.lines)
	}()

	return p, nil
}

func scanLines(r io.Reader, stream Stream, out chan<- Line, wg *sync.WaitGroup) {
	defer wg.Done()
	br := bufio.NewReaderSize(r, 64*1024)
	var buf []byte
	split := false // part of the current line was already sent
	for {
		chunk, isPrefix, err := br.ReadLine()
		buf = append(buf, chunk...)
		// A line longer than maxLineBytes is delivered in pieces.
		for len(buf) >= maxLineBytes {
			out <- Line{Stream: stream, Text: string(buf[:maxLineBytes])}
			buf = buf[maxLineBytes:]
			split = true
		}
		if err != nil {
			if len(buf) > 0 {
				out <- Line{Stream: stream, Text: string(buf)}
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				out <- Line{Stream: System, Text: fmt.Sprintf("read %s: %v", stream, err)}
			}
			break
		}
		if !isPrefix {
			if len(buf) > 0 || !split {
				out <- Line{Stream: stream, Text: string(buf)}
			}
			buf = buf[:0]
			split = false
		}
	}
	// Drain whatever is left so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

// ExitCode extracts the exit code from a Wait error: 0 for nil, the code for
// exit errors, -1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	type exitCoder interface {
		ExitCode() int
	}
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}
