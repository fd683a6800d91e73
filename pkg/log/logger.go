/*
SPDX-License-Identifier: Apache-2.0

Copyright Contributors to the Periscope project.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package log

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
)

// FatalKey marks a log entry emitted just before the process exits.
const FatalKey = "fatal"

// Logger wraps a logr.Logger with formatted helpers at the verbosity levels
// defined in this package.
type Logger struct {
	logr.Logger
}

// V returns a Logger at the given verbosity level, keeping the formatted
// helpers available on the result.
func (l Logger) V(level int) Logger {
	return Logger{Logger: l.Logger.V(level)}
}

func (l Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l Logger) Warning(message string, kvList ...interface{}) {
	l.Info("warning: "+message, kvList...)
}

func (l Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l Logger) Errorf(err error, format string, args ...interface{}) {
	l.Error(err, fmt.Sprintf(format, args...))
}

func (l Logger) Debugf(format string, args ...interface{}) {
	l.V(DEBUG).Info(fmt.Sprintf(format, args...))
}

func (l Logger) Tracef(format string, args ...interface{}) {
	l.V(TRACE).Info(fmt.Sprintf(format, args...))
}

func (l Logger) Fatal(message string) {
	l.Logger.Error(nil, message, FatalKey, "true")
	os.Exit(255)
}

func (l Logger) Fatalf(format string, args ...interface{}) {
	l.Fatal(fmt.Sprintf(format, args...))
}

// FatalOnError exits the process if err is non-nil. Intended for process
// startup code where continuing makes no sense.
func (l Logger) FatalOnError(err error, message string) {
	if err != nil {
		l.Error(err, message)
		os.Exit(255)
	}
}
