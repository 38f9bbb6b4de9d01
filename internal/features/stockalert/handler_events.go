package stockalert

import (
	"log"
	"sync"

	"github.com/tran-hoang-nhan/phone-shop/internal/eventengine"
	"github.com/tran-hoang-nhan/phone-shop/internal/eventengine/event"
)

// subscriberName is the name of this event handler.
const subscriberName event.SubscriberName = "handler_events.stockalert"

type HandlerEventsConfig struct {
	DoneCh        <-chan struct{}
	InternalSrvWG *sync.WaitGroup
	EventEngine   eventengine.SubscribeRegisterPublisher

	// RestockThreshold is the stock level at or below which a line item
	// triggers a restock warning.
	RestockThreshold int
	AddressChSize    uint16
}

type handlerEvents struct {
	*HandlerEventsConfig
	addressCh chan any
}

func NewEventHandler(cfg *HandlerEventsConfig) *handlerEvents {
	if cfg.AddressChSize == 0 {
		cfg.AddressChSize = 10
	}

	if cfg.DoneCh == nil || cfg.InternalSrvWG == nil || cfg.EventEngine == nil {
		log.Fatalf(
			"either 'DoneCh', 'InternalSrvWG' or 'EventEngine' is nil in '%s'",
			subscriberName,
		)
	}

	he := &handlerEvents{
		HandlerEventsConfig: cfg,
		addressCh:           make(chan any, cfg.AddressChSize),
	}

	he.InternalSrvWG.Add(1)
	go he.listen()

	return he
}

func (h *handlerEvents) listen() {
	defer h.InternalSrvWG.Done()

	h.addSubscriptions()

	log.Printf("%s is listening...\n", subscriberName)

	for newEvent := range h.addressCh {
		switch ne := newEvent.(type) {
		case *event.OrderPlacedEvent:
			h.orderPlacedEventHandler(ne)

		case *event.OrderCancelledEvent:
			h.orderCancelledEventHandler(ne)

		default:
			log.Printf(
				"received unknown event type: %T\n",
				ne,
			)
		}
	}

	log.Printf("shutting down %s\n", subscriberName)
}

func (h *handlerEvents) orderPlacedEventHandler(newEvent *event.OrderPlacedEvent) {
	for _, change := range newEvent.StockChanges {
		if change.RemainingStock > h.RestockThreshold {
			continue
		}

		log.Printf(
			"restock warning: product '%v' (%v) down to %d after order '%v'\n",
			change.Title,
			change.ProductID,
			change.RemainingStock,
			newEvent.OrderID,
		)
	}
}

func (h *handlerEvents) orderCancelledEventHandler(newEvent *event.OrderCancelledEvent) {
	for _, change := range newEvent.StockChanges {
		log.Printf(
			"stock restored: product '%v' (%v) back to %d after order '%v' was cancelled\n",
			change.Title,
			change.ProductID,
			change.RemainingStock,
			newEvent.OrderID,
		)
	}
}

// addSubscriptions subscribes this handler's addressCh to every event it
// reacts to.
func (h *handlerEvents) addSubscriptions() {
	subscribeToEventNames := [2]event.EventName{
		event.OrderPlacedEventName,
		event.OrderCancelledEventName,
	}

	for _, eventName := range subscribeToEventNames {
		if err := h.EventEngine.Subscribe(
			eventName,
			&event.Subscriber{
				Name:      subscriberName,
				AddressCh: h.addressCh,
			},
		); err != nil {
			log.Fatalf(
				"error in Subscriber: '%s' \nerror subscribing to events: %v\n",
				subscriberName,
				err,
			)
		}
	}
}
