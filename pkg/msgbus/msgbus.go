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

// Package msgbus is the engine-wide notification bus: a fixed set of topics,
// synchronous publish, one payload type per topic. Subscribers are closures
// that receive the payload as interface{} and type-assert it to their
// topic's payload type; the bus does not check payload types. Publish runs on the calling goroutine
// (always the engine thread in practice); hopping to a host GUI thread is
// the subscriber's own responsibility.
package msgbus

import "sync"

// Topic identifies one of the fixed notification channels the engine emits.
type Topic int

const (
	SystemReset Topic = iota
	EmulatorStateChange
	ExecutionCPUStep
	VideoFrameRefresh
	MemoryChanged
	LabelChanged
	BreakpointHit

	topicCount
)

func (t Topic) String() string {
	switch t {
	case SystemReset:
		return "SYSTEM_RESET"
	case EmulatorStateChange:
		return "EMULATOR_STATE_CHANGE"
	case ExecutionCPUStep:
		return "EXECUTION_CPU_STEP"
	case VideoFrameRefresh:
		return "VIDEO_FRAME_REFRESH"
	case MemoryChanged:
		return "MEMORY_CHANGED"
	case LabelChanged:
		return "LABEL_CHANGED"
	case BreakpointHit:
		return "BREAKPOINT_HIT"
	default:
		return "UNKNOWN_TOPIC"
	}
}

// EmulatorState is the payload of an EmulatorStateChange notification.
type EmulatorState int

const (
	StateStopped EmulatorState = iota
	StateRunning
	StatePaused
)

// MemoryChangedEvent is the payload of a MemoryChanged notification.
type MemoryChangedEvent struct {
	Page   uint16
	Offset uint16
	Value  byte
}

// BreakpointHitEvent is the payload of a BreakpointHit notification.
type BreakpointHitEvent struct {
	ID      int
	Address uint16
}

// LabelChangedEvent is the payload of a LabelChanged notification.
type LabelChangedEvent struct {
	Name    string
	Address uint16
	Removed bool
}

// subscriberList holds one topic's subscribers, each wrapped so Bus can
// invoke every topic uniformly from Publish without per-topic type
// switches on the caller side.
type subscriberList struct {
	mu   sync.Mutex
	subs map[int]func(payload interface{})
	next int
}

// Bus is the synchronous publish/subscribe hub. The zero value is not
// usable; construct with New.
type Bus struct {
	topics [topicCount]*subscriberList
}

// New returns a ready-to-use Bus with every topic's subscriber list
// initialized.
func New() *Bus {
	b := &Bus{}
	for i := range b.topics {
		b.topics[i] = &subscriberList{subs: make(map[int]func(payload interface{}))}
	}
	return b
}

// Subscription identifies one registered subscriber, returned by Subscribe
// so the caller can later Unsubscribe.
type Subscription struct {
	topic Topic
	id    int
}

// Subscribe registers fn to be called, with the topic's payload, every time
// topic is published. The returned Subscription can be passed to
// Unsubscribe to stop receiving further notifications.
func (b *Bus) Subscribe(topic Topic, fn func(payload interface{})) Subscription {
	list := b.topics[topic]
	list.mu.Lock()
	defer list.mu.Unlock()
	id := list.next
	list.next++
	list.subs[id] = fn
	return Subscription{topic: topic, id: id}
}

// Unsubscribe removes a previously registered subscriber. It is a no-op if
// the subscription has already been removed.
func (b *Bus) Unsubscribe(sub Subscription) {
	list := b.topics[sub.topic]
	list.mu.Lock()
	defer list.mu.Unlock()
	delete(list.subs, sub.id)
}

// Publish invokes every subscriber registered for topic with payload,
// synchronously, on the caller's goroutine. Subscribers are snapshotted
// under lock before being called, so a subscriber that calls Subscribe or
// Unsubscribe from within its own callback does not deadlock or race the
// subscriber list.
func (b *Bus) Publish(topic Topic, payload interface{}) {
	list := b.topics[topic]
	list.mu.Lock()
	fns := make([]func(payload interface{}), 0, len(list.subs))
	for _, fn := range list.subs {
		fns = append(fns, fn)
	}
	list.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}
