// Copyright 2020 Grail Inc.
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
package main

/*
phmm-accel is a thin demonstration CLI over package pipeline: it loads a
profile/sequence pair and a seed trace from a local or s3:// path, runs the
accelerator, and prints the resulting scoring.Result as TSV. It is not part
of the accelerator's hard core.
*/

import (
	"github.com/grailbio/base/grail"
	"v.io/x/lib/cmdline"
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:  "phmm-accel",
		Short: "Profile-HMM / sequence-homology search accelerator",
		Children: []*cmdline.Command{
			newCmdSearch(),
			newCmdExplain(),
			newCmdDumpCloud(),
		},
	})
}
