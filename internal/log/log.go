// Copyright 2018 Google LLC All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides the leveled logger shared across this client's
// commands, driven by the CLI's -v/-vv flags.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger at warn level (verbosity 0), info level (verbosity
// 1, "-v"), or debug level (verbosity 2 or more, "-vv").
func New(verbosity int) *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = &logrus.TextFormatter{
		DisableTimestamp: verbosity == 0,
		FullTimestamp:    true,
	}

	switch {
	case verbosity >= 2:
		l.SetLevel(logrus.DebugLevel)
	case verbosity == 1:
		l.SetLevel(logrus.InfoLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}
