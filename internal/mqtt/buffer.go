package mqtt

import "log"

// outboxCapacity is how many messages are held while the broker is unreachable.
const outboxCapacity = 64

// queuedMsg is a serialized MQTT message waiting for a connection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO that drops the oldest message when full.
// Not safe for concurrent use; the caller must synchronize.
type outbox struct {
	msgs    []queuedMsg
	head    int // next write position
	count   int
	dropped int // messages lost since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{msgs: make([]queuedMsg, capacity)}
}

func (o *outbox) push(msg queuedMsg) {
	if o.count == len(o.msgs) {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", len(o.msgs))
		}
		o.dropped++
		// head already points at the oldest entry
		o.msgs[o.head] = msg
		o.head = (o.head + 1) % len(o.msgs)
		return
	}
	o.msgs[o.head] = msg
	o.head = (o.head + 1) % len(o.msgs)
	o.count++
}

// drain returns queued messages oldest first and empties the outbox.
func (o *outbox) drain() []queuedMsg {
	if o.count == 0 {
		return nil
	}
	out := make([]queuedMsg, o.count)
	start := (o.head - o.count + len(o.msgs)) % len(o.msgs)
	for i := range out {
		out[i] = o.msgs[(start+i)%len(o.msgs)]
	}
	o.count = 0
	o.head = 0
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return o.count
}
