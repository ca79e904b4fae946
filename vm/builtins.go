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

// InstallBuiltins populates every @module namespace and the top-level
// max/min/clock natives. Called once by package engine right after
// NewInstance, before the first Interpret.
func InstallBuiltins(vmi *Instance) {
	vmi.SetModule(ModuleMath, buildMathModule(vmi))
	vmi.SetModule(ModuleArray, buildArrayModule(vmi))
	vmi.SetModule(ModuleObject, buildObjectModule(vmi))
	vmi.SetModule(ModuleString, buildStringModule(vmi))
	vmi.SetModule(ModuleTime, buildTimeModule(vmi))
	vmi.SetModule(ModuleCtor, buildCtorModule(vmi))
	vmi.SetModule(ModuleSystem, buildSystemModule(vmi))

	buildTopLevelMathNatives(vmi)
	buildClockNative(vmi)
}
