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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestApiStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	a := testApi(&stubNode{})
	a.config.ListenAddress = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, a.Start(ctx))
	// Double start is rejected
	require.Error(t, a.Start(ctx))
	require.NoError(t, a.Stop(context.Background()))
	// Stop is idempotent
	require.NoError(t, a.Stop(context.Background()))
	cancel()
}
