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

package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spin shows message with a spinner on stderr until the returned function is called with
// the outcome. Nothing is drawn when stderr is not a terminal.
func Spin(message string) func(err error) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func(error) {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	_ = s.Color("cyan")
	s.Start()

	return func(err error) {
		if err != nil {
			s.FinalMSG = Error.Sprint("✗") + " " + message + "\n"
		} else {
			s.FinalMSG = Success.Sprint("✓") + " " + message + "\n"
		}
		s.Stop()
	}
}
