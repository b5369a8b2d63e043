package session

import "github.com/google/uuid"

// SubscriberID identifies one attached sink within a Game.
type SubscriberID uuid.UUID

func (id SubscriberID) String() string { return uuid.UUID(id).String() }

func newSubscriberID() SubscriberID { return SubscriberID(uuid.New()) }

// outboundQueueSize bounds each subscriber's pending-frame channel. A
// subscriber that cannot drain frames faster than this fills up is detached
// rather than allowed to stall the broadcast of every other subscriber:
// drop the subscriber on overflow, never drop a message.
const outboundQueueSize = 64

type subscriber struct {
	id       SubscriberID
	outbound chan []byte
}

func newSubscriber() *subscriber {
	return &subscriber{id: newSubscriberID(), outbound: make(chan []byte, outboundQueueSize)}
}

// tryEnqueue is a non-blocking send. It reports whether the frame was
// accepted; the caller detaches the subscriber on false.
func (s *subscriber) tryEnqueue(frame []byte) bool {
	select {
	case s.outbound <- frame:
		return true
	default:
		return false
	}
}
