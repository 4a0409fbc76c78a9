// Package eventbus dispatches domain events to handlers by argument type.
package eventbus

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tenantgate/pkg/serrors"
)

type EventBus interface {
	// Publish calls every handler whose parameters match args. Handler
	// panics are recovered and logged.
	Publish(args ...any)
	// PublishE is Publish for handlers returning error. Errors and panics are joined.
	PublishE(args ...any) error
	// Subscribe registers handler and returns a func that removes it.
	Subscribe(handler any) (unsubscribe func())
	SubscribersCount() int
}

var (
	ErrNoSubscribers        = serrors.NewError("eventbus_no_subscribers", "no matching subscribers", 0)
	ErrInvalidHandlerReturn = serrors.NewError("eventbus_invalid_handler_return", "invalid handler return signature", 0)
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type subscriber struct {
	id      uint64
	handler reflect.Value
}

type publisherImpl struct {
	log    *logrus.Logger
	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &publisherImpl{log: log}
}

// MatchSignature reports whether handler can be called with args.
func MatchSignature(handler any, args []any) bool {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		paramType := t.In(i)
		if arg == nil {
			k := paramType.Kind()
			if k != reflect.Interface && k != reflect.Ptr {
				return false
			}
			continue
		}
		if !reflect.TypeOf(arg).AssignableTo(paramType) {
			return false
		}
	}
	return true
}

func (p *publisherImpl) matching(args []any) []reflect.Value {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []reflect.Value
	for _, s := range p.subs {
		if MatchSignature(s.handler.Interface(), args) {
			out = append(out, s.handler)
		}
	}
	return out
}

func callArgs(handler reflect.Value, args []any) []reflect.Value {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(handler.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}
	return in
}

func (p *publisherImpl) Publish(args ...any) {
	handlers := p.matching(args)
	if len(handlers) == 0 {
		if p.log != nil {
			p.log.WithField("args", fmt.Sprintf("%T", args)).Warn("eventbus.Publish: no matching subscribers")
		}
		return
	}
	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil && p.log != nil {
					p.log.WithFields(logrus.Fields{
						"handler": h.Type().String(),
						"args":    fmt.Sprintf("%+v", args),
					}).Errorf("eventbus: handler panicked: %v", r)
				}
			}()
			h.Call(callArgs(h, args))
		}()
	}
}

func (p *publisherImpl) PublishE(args ...any) error {
	handlers := p.matching(args)
	if len(handlers) == 0 {
		return ErrNoSubscribers
	}

	var errs []error
	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					errs = append(errs, fmt.Errorf("eventbus: handler %s panicked: %v", h.Type().String(), r))
				}
			}()

			out := h.Call(callArgs(h, args))
			switch {
			case len(out) == 0:
			case len(out) != 1 || out[0].Type() != errorType:
				errs = append(errs, fmt.Errorf("%w: handler %s", ErrInvalidHandlerReturn, h.Type().String()))
			case !out[0].IsNil():
				errs = append(errs, out[0].Interface().(error))
			}
		}()
	}
	return errors.Join(errs...)
}

func (p *publisherImpl) Subscribe(handler any) func() {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		panic("handler must be a function")
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscriber{id: id, handler: v})
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

func (p *publisherImpl) SubscribersCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}
