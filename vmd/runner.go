/*
 * runner.go, part of trpprep
 *
 * Copyright 2024 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package vmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rmera/trpprep/internal/ctxlog"
)

// ErrScript is returned when VMD reports an error in a script.
var ErrScript = errors.New("vmd: script failed")

// Runner runs VMD scripts. name identifies the script, and is used to name the
// files the runner writes, if any.
type Runner interface {
	Run(ctx context.Context, name string, s *Script) error
}

// Exec runs scripts with a VMD executable, in text mode.
type Exec struct {
	Command string   //VMD executable, "vmd" if empty.
	Args    []string //arguments before the script name, "-dispdev text -e" if nil.
	Dir     string   //work directory, where the script and log are written. The current one if empty.
	Output  io.Writer
}

// NewExec returns a runner that uses the VMD executable command (or "vmd" if empty)
// and writes its scripts and logs in dir.
func NewExec(command, dir string) *Exec {
	return &Exec{Command: command, Dir: dir}
}

func (E *Exec) command() string {
	if E.Command == "" {
		return "vmd"
	}
	return os.ExpandEnv(E.Command)
}

func (E *Exec) args() []string {
	if E.Args == nil {
		return []string{"-dispdev", "text", "-e"}
	}
	return E.Args
}

// Run writes the script to <name>.tcl in the work directory and runs VMD on it, writing
// VMD's output to <name>.log (and to Output, if set). The run fails if VMD exits with a
// non-zero status or prints ErrorMarker, in which case the error wraps ErrScript and contains
// the message VMD printed. The VMD process is killed if ctx is cancelled.
func (E *Exec) Run(ctx context.Context, name string, s *Script) error {
	log := ctxlog.FromContext(ctx)
	dir := E.Dir
	if dir == "" {
		dir = "."
	}
	tcl := filepath.Join(dir, name+".tcl")
	if err := os.WriteFile(tcl, []byte(s.String()), 0o644); err != nil {
		return fmt.Errorf("vmd: writing script %s: %w", tcl, err)
	}
	logname := filepath.Join(dir, name+".log")
	logfile, err := os.Create(logname)
	if err != nil {
		return fmt.Errorf("vmd: creating log %s: %w", logname, err)
	}
	defer logfile.Close()
	args := append(append([]string{}, E.args()...), name+".tcl")
	cmd := exec.CommandContext(ctx, E.command(), args...)
	cmd.Dir = dir
	cmd.WaitDelay = 5 * time.Second
	var tail tailBuffer
	var out io.Writer = io.MultiWriter(logfile, &tail)
	if E.Output != nil {
		out = io.MultiWriter(out, E.Output)
	}
	cmd.Stdout = out
	cmd.Stderr = out
	log.Info("Running VMD", "script", tcl, "log", logname)
	start := time.Now()
	runerr := cmd.Run()
	log.Debug("VMD finished", "script", name, "elapsed", time.Since(start).Round(time.Millisecond))
	if msg, ok := tail.marker(); ok {
		return fmt.Errorf("%w: %s: %s (see %s)", ErrScript, name, msg, logname)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("vmd: %s: %w", name, ctx.Err())
	}
	if runerr != nil {
		return fmt.Errorf("%w: %s: %v (see %s)", ErrScript, name, runerr, logname)
	}
	return nil
}

// tailBuffer keeps the output of VMD, to look for the error marker.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (T *tailBuffer) Write(p []byte) (int, error) {
	T.mu.Lock()
	defer T.mu.Unlock()
	return T.buf.Write(p)
}

// marker returns the message after the first ErrorMarker found, if any.
func (T *tailBuffer) marker() (string, bool) {
	T.mu.Lock()
	defer T.mu.Unlock()
	sc := bufio.NewScanner(bytes.NewReader(T.buf.Bytes()))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, ErrorMarker); i >= 0 {
			return strings.TrimSpace(line[i+len(ErrorMarker):]), true
		}
	}
	return "", false
}

// Recorded is a script kept by a Recorder.
type Recorded struct {
	Name   string
	Script *Script
}

// Recorder is a Runner that doesn't run anything, it only keeps the scripts it gets.
// If Hook is not nil, it is called for each script and its error is returned by Run,
// so it can stand in for VMD, for instance by creating the files a script would.
type Recorder struct {
	mu      sync.Mutex
	Scripts []Recorded
	Hook    func(name string, s *Script) error
}

// Run records the script.
func (R *Recorder) Run(ctx context.Context, name string, s *Script) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	R.mu.Lock()
	R.Scripts = append(R.Scripts, Recorded{name, s})
	hook := R.Hook
	R.mu.Unlock()
	if hook != nil {
		return hook(name, s)
	}
	return nil
}

// Names returns the names of the recorded scripts, in order.
func (R *Recorder) Names() []string {
	R.mu.Lock()
	defer R.mu.Unlock()
	ret := make([]string, len(R.Scripts))
	for i, s := range R.Scripts {
		ret[i] = s.Name
	}
	return ret
}
