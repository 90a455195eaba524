package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"

	"vbtix/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

// ScanFeed streams every processed scan (accepted or rejected) for an event
// to websocket subscribers, via a redis channel so multiple instances share
// one feed.
type ScanFeed struct {
	redis  *redis.Client
	events map[uint]*eventFeed
	mu     sync.Mutex
}

// eventFeed is one redis subscription shared by every websocket client of
// the same event, so each scan is delivered to each client exactly once.
type eventFeed struct {
	conns  map[*websocket.Conn]bool
	pubsub *redis.PubSub
}

func NewScanFeed(redisClient *redis.Client) *ScanFeed {
	return &ScanFeed{
		redis:  redisClient,
		events: make(map[uint]*eventFeed),
	}
}

// PublishScan implements service.ScanPublisher. Best-effort: a redis outage
// only costs the live feed, never the scan itself.
func (f *ScanFeed) PublishScan(eventId uint, result service.ScanResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	channel := fmt.Sprintf("event:%d:scans", eventId)
	if err := f.redis.Publish(context.Background(), channel, payload).Err(); err != nil {
		log.Printf("publish scan to %s: %v", channel, err)
	}
}

// Connection handles one websocket subscriber for an event's scan feed. The
// first subscriber of an event opens the redis subscription; the last one
// out closes it.
func (f *ScanFeed) Connection(c *websocket.Conn) {
	eventIdStr := c.Params("id")
	id64, _ := strconv.ParseUint(eventIdStr, 10, 64)
	eventId := uint(id64)

	f.mu.Lock()
	feed := f.events[eventId]
	if feed == nil {
		feed = &eventFeed{
			conns: make(map[*websocket.Conn]bool),
			pubsub: f.redis.Subscribe(
				context.Background(),
				fmt.Sprintf("event:%d:scans", eventId),
			),
		}
		f.events[eventId] = feed
		go f.fanOut(feed)
	}
	feed.conns[c] = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(feed.conns, c)
		if len(feed.conns) == 0 {
			feed.pubsub.Close()
			delete(f.events, eventId)
		}
		f.mu.Unlock()
		c.Close()
	}()

	// Block until the client disconnects; the feed is write-only.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// fanOut copies every message of one event subscription to its clients. It
// ends when the last client's departure closes the pubsub.
func (f *ScanFeed) fanOut(feed *eventFeed) {
	for msg := range feed.pubsub.Channel() {
		payload := []byte(msg.Payload)

		f.mu.Lock()
		for conn := range feed.conns {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				conn.Close()
				delete(feed.conns, conn)
			}
		}
		f.mu.Unlock()
	}
}
