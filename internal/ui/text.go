/*
 Copyright (c) 2025 Arenadata Softwer LLC.
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

// Package ui formats terminal output. Colors follow NO_COLOR and terminal detection of
// fatih/color; without colors Code and Highlight fall back to quoting.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

func (f Formatter) Sprint(a ...any) string {
	text := fmt.Sprint(a...)
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

func (f Formatter) Sprintf(format string, a ...any) string {
	return f.Sprint(fmt.Sprintf(format, a...))
}

func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	Code      = Formatter{color.New(color.FgYellow), "`", "`"}
	Path      = Formatter{color.New(color.FgYellow), "", ""}
	Success   = Formatter{color.New(color.FgGreen), "", ""}
	Error     = Formatter{color.New(color.FgRed), "", ""}
	Warning   = Formatter{color.New(color.FgYellow), "", ""}
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}
)

// Diff colors the lines of a "+ "/"- " prefixed diff.
func Diff(s string) string {
	if noColor() {
		return s
	}

	var sb strings.Builder
	for _, line := range strings.SplitAfter(s, "\n") {
		switch {
		case strings.HasPrefix(line, "+ "):
			sb.WriteString(Success.Sprint(line))
		case strings.HasPrefix(line, "- "):
			sb.WriteString(Error.Sprint(line))
		default:
			sb.WriteString(line)
		}
	}
	return sb.String()
}
