// This file is part of loxflux.
//
// Copyright 2024 The LoxFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

// MaxFrames bounds call-stack depth; exceeding it raises a stack-overflow
// runtime error rather than growing without limit.
const MaxFrames = 1024

// callFrame is one activation record: the closure being executed, its
// instruction pointer, and the base of its stack window.
type callFrame struct {
	closure   *ObjClosure
	ip        int
	base      int    // index into Instance.stack where this frame's locals start
	moduleKey string // non-empty when this frame is a module body; caches on return
}
