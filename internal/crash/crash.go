/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics in entry points into a crash report and a non-zero exit.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"gocropper/internal/geom"
	applog "gocropper/internal/log"
	"gocropper/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Info is what the report records about the session that crashed. Selection is read
// lazily so the report shows the selection at the time of the panic.
type Info struct {
	Dir       string // report directory; the temp dir if empty
	Image     string
	Selection func() geom.Rect
}

// Recover captures a panic, logs an error with stacktrace, writes an error report file
// and exits with code 2.
//
// Usage: defer crash.Recover(info)
func Recover(info *Info) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(info, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

func writeReport(info *Info, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if info != nil && info.Dir != "" {
		dir = info.Dir
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("gocropper-crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "gocropper Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if info != nil {
		if info.Image != "" {
			_, _ = fmt.Fprintf(&buf, "Image: %s\n", info.Image)
		}
		if info.Selection != nil {
			_, _ = fmt.Fprintf(&buf, "Selection: %v\n", safeSelection(info.Selection))
		}
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}

// safeSelection reads the selection without letting a second panic escape the report.
func safeSelection(fn func() geom.Rect) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = "unavailable"
		}
	}()
	return fn().String()
}
