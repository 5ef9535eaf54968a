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

package processor

import (
	"log/slog"

	"github.com/blinklabs-io/quill/event"
	"github.com/blinklabs-io/quill/ledger"
)

// MembershipManager handles enrollment
type MembershipManager struct {
	logger   *slog.Logger
	eventBus *event.EventBus
}

// Join appends a new member with the current oracle time. There is no
// uniqueness check: enrolling the same identity twice produces two
// member entries.
func (m *MembershipManager) Join(
	agg *ledger.Aggregate,
	member ledger.Identity,
	now int64,
) ledger.Member {
	newMember := ledger.Member{
		Address:  member,
		JoinedAt: now,
	}
	agg.Members = append(agg.Members, newMember)
	m.logger.Info(
		"new member joined",
		"component", "membership",
		"member", member.String(),
	)
	if m.eventBus != nil {
		m.eventBus.Publish(
			MemberJoinedEventType,
			event.NewEvent(
				MemberJoinedEventType,
				MemberJoinedEvent{
					Member:   member,
					JoinedAt: now,
				},
			),
		)
	}
	return newMember
}
