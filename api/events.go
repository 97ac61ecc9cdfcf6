// Copyright 2025 Blink Labs Software
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

package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/blinklabs-io/boarding/event"
	"github.com/blinklabs-io/boarding/ledger"
	"github.com/blinklabs-io/boarding/registry"
	"github.com/gorilla/websocket"
)

const (
	eventStreamBuffer = 100
	eventWriteTimeout = 10 * time.Second
	eventPingInterval = 30 * time.Second
)

var errStreamClosed = errors.New("event stream closed")

// streamEventTypes are the event types available on the event stream
var streamEventTypes = []event.EventType{
	registry.ConfigurationCreatedEventType,
	registry.ConfigurationUpdatedEventType,
	registry.RequestCreatedEventType,
	registry.RequestDecidedEventType,
	registry.RequestUpdatedEventType,
	registry.RequestRefundedEventType,
	ledger.TransactionEventType,
	ledger.AirdropEventType,
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// EventMessage is the JSON form of an event on the stream
type EventMessage struct {
	Timestamp time.Time       `json:"timestamp"`
	Data      any             `json:"data"`
	Type      event.EventType `json:"type"`
}

// streamSubscriber queues events for one websocket connection. Events are
// dropped while the queue is full
type streamSubscriber struct {
	ch        chan event.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newStreamSubscriber() *streamSubscriber {
	return &streamSubscriber{
		ch:   make(chan event.Event, eventStreamBuffer),
		done: make(chan struct{}),
	}
}

func (s *streamSubscriber) Deliver(evt event.Event) error {
	select {
	case <-s.done:
		return errStreamClosed
	default:
	}
	select {
	case s.ch <- evt:
	default:
	}
	return nil
}

func (s *streamSubscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// parseEventTypes parses a comma separated list of event types. An empty
// list selects every stream event type
func parseEventTypes(param string) ([]event.EventType, error) {
	if param == "" {
		return streamEventTypes, nil
	}
	var ret []event.EventType
	for name := range strings.SplitSeq(param, ",") {
		found := false
		for _, evtType := range streamEventTypes {
			if string(evtType) == strings.TrimSpace(name) {
				ret = append(ret, evtType)
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New("unknown event type: " + name)
		}
	}
	return ret, nil
}

// handleEvents handles GET /api/v1/events?types=... and streams events over
// a websocket until the client disconnects
func (s *Server) handleEvents(
	w http.ResponseWriter,
	r *http.Request,
) {
	eventTypes, err := parseEventTypes(r.URL.Query().Get("types"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := newStreamSubscriber()
	defer sub.Close()
	bus := s.config.EventBus
	subIds := make([]event.EventSubscriberId, 0, len(eventTypes))
	for _, evtType := range eventTypes {
		subIds = append(subIds, bus.RegisterSubscriber(evtType, sub))
	}
	defer func() {
		for idx, subId := range subIds {
			bus.Unsubscribe(eventTypes[idx], subId)
		}
	}()

	// Reads are only used to notice the client going away
	go func() {
		defer sub.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(eventPingInterval)
	defer pingTicker.Stop()
	closing := s.closing()
	for {
		select {
		case <-sub.done:
			return
		case <-closing:
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(
					websocket.CloseGoingAway,
					"server shutting down",
				),
				time.Now().Add(eventWriteTimeout),
			)
			return
		case <-pingTicker.C:
			if err := conn.WriteControl(
				websocket.PingMessage,
				nil,
				time.Now().Add(eventWriteTimeout),
			); err != nil {
				return
			}
		case evt := <-sub.ch:
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			err := conn.WriteJSON(EventMessage{
				Type:      evt.Type,
				Timestamp: evt.Timestamp,
				Data:      evt.Data,
			})
			if err != nil {
				s.logger.Debug("event stream write failed", "error", err)
				return
			}
		}
	}
}
