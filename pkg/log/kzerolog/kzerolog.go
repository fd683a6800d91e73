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

// Package kzerolog installs a human friendly zerolog backend as the concrete
// logr implementation used by controller-runtime and klog.
package kzerolog

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"k8s.io/klog/v2"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	maxLenLogger = 20
	maxLenCaller = 25
)

var verbosityLevel = 0

// AddFlags registers command line options for zerolog-based logging. Should be called before InitK8sLogging.
func AddFlags(flagset *flag.FlagSet) {
	if flagset == nil {
		flagset = flag.CommandLine
	}

	flagset.IntVar(&verbosityLevel, "v", verbosityLevel,
		"number for the log level verbosity (higher is more verbose)")
}

// InitK8sLogging initializes a human friendly zerolog logger as the concrete logr.Logger
// implementation in use by controller-runtime and by klog.
func InitK8sLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zeroLogger := createLogger()
	logAdapter := logr.New(&zeroLogSink{zLogger: &zeroLogger, maxVerbosity: verbosityLevel})
	logf.SetLogger(logAdapter)
	klog.SetLogger(logAdapter)
}

func createLogger() zerolog.Logger {
	consoleWriter := &zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02T15:04:05.000Z07:00"}
	consoleWriter.FormatCaller = formatCaller

	return log.Output(consoleWriter).With().Caller().Logger()
}

func formatCaller(i interface{}) string {
	return truncate(i, maxLenCaller)
}

type zeroLogSink struct {
	zLogger      *zerolog.Logger
	prefix       string
	maxVerbosity int
}

func (s *zeroLogSink) clone() zeroLogSink {
	return zeroLogSink{
		zLogger:      s.zLogger,
		prefix:       s.prefix,
		maxVerbosity: s.maxVerbosity,
	}
}

func truncate(i interface{}, maxLen int) string {
	str := fmt.Sprintf("%s", i)
	if len(str) > maxLen {
		str = ".." + str[len(str)-maxLen+2:]
	}

	padFmtStr := fmt.Sprintf("%%-%ds", maxLen)

	return fmt.Sprintf(padFmtStr, str)
}

func (s *zeroLogSink) logEvent(evt *zerolog.Event, msg string, kvList ...interface{}) {
	msg = truncate(s.prefix, maxLenLogger) + " " + msg
	evt.Fields(kvList).CallerSkipFrame(3).Msg(msg)
}

func (s *zeroLogSink) Init(_ logr.RuntimeInfo) {
}

func (s *zeroLogSink) Enabled(level int) bool {
	return level <= s.maxVerbosity
}

func (s *zeroLogSink) Info(level int, msg string, kvList ...interface{}) {
	if !s.Enabled(level) {
		return
	}

	s.logEvent(s.zLogger.Info(), msg, kvList...)
}

func (s *zeroLogSink) Error(err error, msg string, kvList ...interface{}) {
	s.logEvent(s.zLogger.Err(err), msg, kvList...)
}

func (s *zeroLogSink) WithName(name string) logr.LogSink {
	subSink := s.clone()
	if len(s.prefix) > 0 {
		subSink.prefix = s.prefix + "/"
	}

	subSink.prefix += name

	return &subSink
}

func (s *zeroLogSink) WithValues(kvList ...interface{}) logr.LogSink {
	subSink := s.clone()
	logger := s.zLogger.With().Fields(kvList).Logger()
	subSink.zLogger = &logger

	return &subSink
}
