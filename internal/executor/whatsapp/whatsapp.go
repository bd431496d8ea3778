// Package whatsapp implements the send_whatsapp_message executor.
//
// The contact name from the action is resolved through the contact
// directory, the phone number is checked, and the text is handed to a
// Sender behind a circuit breaker so that a dead session fails fast instead
// of blocking every request.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nadzzz/vaani/internal/executor"
	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/store"
)

// Sender delivers a text message to an E.164 phone number.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// Directory resolves spoken contact names.
type Directory interface {
	GetContactByName(ctx context.Context, name string) (*store.Contact, error)
}

// Options tunes the breaker and timeout around the sender.
type Options struct {
	MaxFailures  uint32
	BreakerReset time.Duration
	SendTimeout  time.Duration
}

// Executor sends WhatsApp messages.
type Executor struct {
	dir     Directory
	sender  Sender
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

// New creates the executor.
func New(dir Directory, sender Sender, opts Options) *Executor {
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 3
	}
	if opts.BreakerReset == 0 {
		opts.BreakerReset = 30 * time.Second
	}
	maxFailures := opts.MaxFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "whatsapp-send",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerReset,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Executor{dir: dir, sender: sender, breaker: cb, timeout: opts.SendTimeout}
}

// Tool implements executor.Executor.
func (e *Executor) Tool() string { return message.ToolSendWhatsAppMessage }

// Execute implements executor.Executor.
func (e *Executor) Execute(ctx context.Context, action message.Action) (*executor.Result, error) {
	name := action.Param("contact_name")
	text := action.Param("message")
	lang := multilang.ParseLanguage(action.Param("language"))
	if action.Param("language") == "" {
		lang = multilang.ParseLanguage(action.Language)
	}

	contact, err := e.dir.GetContactByName(ctx, name)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, executor.Fail(executor.ErrContactNotFound, notFound.Format(lang, vars(name, text)), nil)
		}
		return nil, executor.Fail(executor.ErrAutomationFailed, sendFailed.Format(lang, vars(name, text)), err)
	}

	if !executor.ValidPhone(contact.PhoneNumber) {
		return nil, executor.Fail(executor.ErrInvalidPhone, invalidPhone.Format(lang, vars(contact.Name, text)), nil)
	}

	_, err = e.breaker.Execute(func() (interface{}, error) {
		sendCtx := ctx
		if e.timeout > 0 {
			var cancel context.CancelFunc
			sendCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
		return nil, e.sender.Send(sendCtx, contact.PhoneNumber, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("sender unavailable: %w", err)
		}
		return nil, executor.Fail(executor.ErrAutomationFailed, sendFailed.Format(lang, vars(contact.Name, text)), err)
	}

	slog.Info("whatsapp message sent", "contact", contact.Name, "length", len(text))
	return &executor.Result{
		Message: sent.Format(lang, vars(contact.Name, text)),
		Data:    map[string]string{"contact": contact.Name, "phone": contact.PhoneNumber},
	}, nil
}

func vars(contact, text string) map[string]string {
	return map[string]string{"contact": contact, "message": text}
}

var (
	sent = multilang.Phrases{
		multilang.English:  "WhatsApp message sent to {contact}: '{message}'",
		multilang.Hindi:    "{contact} ko WhatsApp par message bhej diya: '{message}'",
		multilang.Gujarati: "{contact} ne WhatsApp par message mokli didhu: '{message}'",
	}
	notFound = multilang.Phrases{
		multilang.English:  "Contact '{contact}' not found in database. Please add the contact first.",
		multilang.Hindi:    "'{contact}' contact database mein nahi mila. Pehle contact add karein.",
		multilang.Gujarati: "'{contact}' contact database ma nathi. Pehla contact add karo.",
	}
	invalidPhone = multilang.Phrases{
		multilang.English:  "Invalid phone number for {contact}. Please update the contact.",
		multilang.Hindi:    "{contact} ka phone number galat hai. Contact update karein.",
		multilang.Gujarati: "{contact} nu phone number galat che. Contact update karo.",
	}
	sendFailed = multilang.Phrases{
		multilang.English:  "Failed to send WhatsApp message to {contact}. Please try manually.",
		multilang.Hindi:    "{contact} ko WhatsApp message nahi bhej paya. Manually bhejein.",
		multilang.Gujarati: "{contact} ne WhatsApp message nahi mokli shakyu. Manually moklo.",
	}
)
