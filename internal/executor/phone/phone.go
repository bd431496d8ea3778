// Package phone implements make_phone_call. The daemon cannot dial, so the
// executor resolves the contact and hands back a tel: URI for the client.
package phone

import (
	"context"

	"github.com/nadzzz/vaani/internal/executor"
	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/store"
)

// Directory resolves spoken contact names.
type Directory interface {
	GetContactByName(ctx context.Context, name string) (*store.Contact, error)
}

// Executor serves make_phone_call.
type Executor struct {
	dir Directory
}

// New creates the executor.
func New(dir Directory) *Executor {
	return &Executor{dir: dir}
}

// Tool implements executor.Executor.
func (e *Executor) Tool() string { return message.ToolMakePhoneCall }

// Execute implements executor.Executor.
func (e *Executor) Execute(ctx context.Context, action message.Action) (*executor.Result, error) {
	name := action.Param("contact_name")
	lang := multilang.ParseLanguage(action.Language)

	contact, err := e.dir.GetContactByName(ctx, name)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, executor.Fail(executor.ErrContactNotFound, notFound.Format(lang, map[string]string{"contact": name}), nil)
		}
		return nil, err
	}
	vars := map[string]string{"contact": contact.Name}
	if !executor.ValidPhone(contact.PhoneNumber) {
		return nil, executor.Fail(executor.ErrInvalidPhone, invalidPhone.Format(lang, vars), nil)
	}

	return &executor.Result{
		Message: useDialer.Format(lang, vars),
		Data: map[string]string{
			"contact": contact.Name,
			"phone":   contact.PhoneNumber,
			"uri":     "tel:" + contact.PhoneNumber,
		},
	}, nil
}

var (
	useDialer = multilang.Phrases{
		multilang.English:  "To call {contact}, please use your phone's dialer",
		multilang.Hindi:    "{contact} ko call karne ke liye phone ka dialer use karein",
		multilang.Gujarati: "{contact} ne call karva mate phone nu dialer vapro",
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
)
