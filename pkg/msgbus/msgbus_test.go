// This file is part of unreal-ng.
//
// unreal-ng is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// unreal-ng is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with unreal-ng.  If not, see <https://www.gnu.org/licenses/>.

package msgbus_test

import (
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/msgbus"
)

func TestPublishInvokesSubscriberWithPayload(t *testing.T) {
	bus := msgbus.New()
	var got msgbus.BreakpointHitEvent
	calls := 0
	bus.Subscribe(msgbus.BreakpointHit, func(payload interface{}) {
		calls++
		got = payload.(msgbus.BreakpointHitEvent)
	})

	bus.Publish(msgbus.BreakpointHit, msgbus.BreakpointHitEvent{ID: 3, Address: 0x05ED})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if got.ID != 3 || got.Address != 0x05ED {
		t.Fatalf("got = %+v, want {ID:3 Address:0x05ED}", got)
	}
}

func TestPublishDoesNotCrossTopics(t *testing.T) {
	bus := msgbus.New()
	called := false
	bus.Subscribe(msgbus.SystemReset, func(payload interface{}) { called = true })

	bus.Publish(msgbus.MemoryChanged, msgbus.MemoryChangedEvent{Page: 5, Offset: 0x100, Value: 0xFF})

	if called {
		t.Fatalf("subscriber on a different topic was invoked")
	}
}

func TestUnsubscribeStopsFurtherDelivery(t *testing.T) {
	bus := msgbus.New()
	calls := 0
	sub := bus.Subscribe(msgbus.LabelChanged, func(payload interface{}) { calls++ })

	bus.Publish(msgbus.LabelChanged, msgbus.LabelChangedEvent{Name: "START", Address: 0x8000})
	bus.Unsubscribe(sub)
	bus.Publish(msgbus.LabelChanged, msgbus.LabelChangedEvent{Name: "START", Address: 0x8000})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (delivery should stop after Unsubscribe)", calls)
	}
}

func TestMultipleSubscribersAllReceivePublish(t *testing.T) {
	bus := msgbus.New()
	count := 0
	bus.Subscribe(msgbus.VideoFrameRefresh, func(payload interface{}) { count++ })
	bus.Subscribe(msgbus.VideoFrameRefresh, func(payload interface{}) { count++ })
	bus.Subscribe(msgbus.VideoFrameRefresh, func(payload interface{}) { count++ })

	bus.Publish(msgbus.VideoFrameRefresh, nil)

	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestSubscriberCanUnsubscribeItselfDuringPublish(t *testing.T) {
	bus := msgbus.New()
	var sub msgbus.Subscription
	calls := 0
	sub = bus.Subscribe(msgbus.EmulatorStateChange, func(payload interface{}) {
		calls++
		bus.Unsubscribe(sub)
	})

	bus.Publish(msgbus.EmulatorStateChange, msgbus.StateRunning)
	bus.Publish(msgbus.EmulatorStateChange, msgbus.StateRunning)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestTopicStringMatchesSpecNames(t *testing.T) {
	cases := map[msgbus.Topic]string{
		msgbus.SystemReset:         "SYSTEM_RESET",
		msgbus.EmulatorStateChange: "EMULATOR_STATE_CHANGE",
		msgbus.ExecutionCPUStep:    "EXECUTION_CPU_STEP",
		msgbus.VideoFrameRefresh:   "VIDEO_FRAME_REFRESH",
		msgbus.MemoryChanged:       "MEMORY_CHANGED",
		msgbus.LabelChanged:        "LABEL_CHANGED",
		msgbus.BreakpointHit:       "BREAKPOINT_HIT",
	}
	for topic, want := range cases {
		if got := topic.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", topic, got, want)
		}
	}
}
