// Copyright 2026 Blink Labs Software
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

package host

import "time"

// Clock is the timestamp oracle. All temporal logic in the engine is
// expressed as comparisons against a single reading taken at the start
// of instruction processing.
type Clock interface {
	Now() int64
}

// SystemClock reads the host wall clock as Unix seconds
type SystemClock struct{}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// FixedClock always reads the same instant. Useful in tests and batch
// replay tooling.
type FixedClock struct {
	Time int64
}

func (c FixedClock) Now() int64 {
	return c.Time
}
