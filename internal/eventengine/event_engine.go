package eventengine

import (
	"fmt"
	"log"
	"sync"

	"github.com/tran-hoang-nhan/phone-shop/internal/eventengine/event"
)

type Publisher interface {
	Publish(event *event.Event) error
}

type Subscriber interface {
	Subscribe(toEventName event.EventName, subscriber *event.Subscriber) error
}

type RegisterPublisher interface {
	Publisher
	RegisterEvents(eventNames ...event.EventName)
}

type SubscribeRegisterPublisher interface {
	Subscriber
	RegisterPublisher
}

type subscribers struct {
	names      []event.SubscriberName
	addressChs []chan<- any
}

type EventEngineConfig struct {
	DoneCh        <-chan struct{}
	InternalSrvWG *sync.WaitGroup
}

// eventEngine is the in-process pub/sub bus connecting features without
// direct imports. Publish is asynchronous; events queued at shutdown are
// drained before subscriber channels are closed.
type eventEngine struct {
	*EventEngineConfig

	eventEngineCh chan *event.Event
	events        map[event.EventName]*subscribers
}

func NewEventEngine(cfg *EventEngineConfig) SubscribeRegisterPublisher {
	if cfg == nil {
		log.Fatalln("'eventEngineConfig' can not be nil")
	}

	if cfg.DoneCh == nil || cfg.InternalSrvWG == nil {
		log.Fatalln("either DoneCh or InternalSrvWG is nil")
	}

	e := &eventEngine{
		EventEngineConfig: cfg,
		events:            make(map[event.EventName]*subscribers, 20),
		eventEngineCh:     make(chan *event.Event, 20),
	}

	e.InternalSrvWG.Add(1)
	go e.listen()

	return e
}

func (e *eventEngine) listen() {
	defer e.InternalSrvWG.Done()

	log.Println("event engine is listening...")

	for {
		select {
		case <-e.DoneCh:
			log.Println("event engine is shutting down, draining pending events")
			close(e.eventEngineCh)
			for pending := range e.eventEngineCh {
				e.broadcast(pending)
			}

			e.shutdownSubscribersAddressCh()
			return

		case newEvent, isOpened := <-e.eventEngineCh:
			if !isOpened {
				return
			}

			e.broadcast(newEvent)
		}
	}
}

func (e *eventEngine) broadcast(newEvent *event.Event) {
	subs, exists := e.events[newEvent.Name]
	if !exists {
		log.Printf(
			"event '%v' not found. check your event handler\n",
			newEvent.Name,
		)
		return
	}

	for i, addressCh := range subs.addressChs {
		if addressCh == nil {
			log.Printf(
				"subscriber '%v's' addressCh is nil. check this event handler to make sure it has been initialized\n",
				subs.names[i],
			)
			continue
		}

		addressCh <- newEvent.Payload
	}
}

// RegisterEvents adds all events a publisher can publish to the engine.
//
// IMPORTANT: Register an event before you try to publish or subscribe to it.
func (e *eventEngine) RegisterEvents(eventNames ...event.EventName) {
	for _, eventName := range eventNames {
		if _, exists := e.events[eventName]; exists {
			continue
		}

		e.events[eventName] = &subscribers{}
	}

	log.Println("registering events:", eventNames)
}

func (e *eventEngine) Subscribe(toEventName event.EventName, newSubscriber *event.Subscriber) error {
	subs, ok := e.events[toEventName]
	if !ok {
		return fmt.Errorf(
			"event '%v' not found. make sure the publishing service called RegisterEvents before subscribing",
			toEventName,
		)
	}

	subs.names = append(subs.names, newSubscriber.Name)
	subs.addressChs = append(subs.addressChs, newSubscriber.AddressCh)

	return nil
}

func (e *eventEngine) Publish(newEvent *event.Event) error {
	if _, exists := e.events[newEvent.Name]; !exists {
		return fmt.Errorf(
			"event '%v' not found. make sure the publishing service called RegisterEvents",
			newEvent.Name,
		)
	}

	e.eventEngineCh <- newEvent

	return nil
}

func (e *eventEngine) shutdownSubscribersAddressCh() {
	// a subscriber may listen to several events on one addressCh
	closed := make(map[chan<- any]struct{})

	for _, subs := range e.events {
		for _, addressCh := range subs.addressChs {
			if addressCh == nil {
				continue
			}

			if _, alreadyClosed := closed[addressCh]; alreadyClosed {
				continue
			}

			closed[addressCh] = struct{}{}
			close(addressCh)
		}
	}

	log.Println("subscriber addressChs shut down")
}
