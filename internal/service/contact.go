package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/queue"
)

// ContactForm is the raw input of the contact page.
type ContactForm struct {
	ReturnEmail string
	Title       string
	Body        string
}

// ContactService stores messages addressed to the administrators.
type ContactService struct {
	messages MessageStore
	events   EventPublisher
}

func NewContactService(messages MessageStore, events EventPublisher) *ContactService {
	return &ContactService{messages: messages, events: events}
}

// Submit validates and stores a message from a logged-in user.
func (s *ContactService) Submit(ctx context.Context, actor auth.Identity, form ContactForm) (*model.Message, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	var p problems
	m := model.Message{
		INumber:     actor.INumber,
		ReturnEmail: strings.ToLower(strings.TrimSpace(form.ReturnEmail)),
		Title:       strings.TrimSpace(form.Title),
		Body:        strings.TrimSpace(form.Body),
	}
	p.check(validEmail(m.ReturnEmail), "A valid return email is required and must be ≤ 45 characters.")
	p.check(m.Title != "" && length(m.Title) <= 45, "Title is required and must be at most 45 characters.")
	p.check(m.Body != "" && length(m.Body) <= 256, "Message is required and must be at most 256 characters.")
	if err := p.err(); err != nil {
		return nil, err
	}

	if err := s.messages.Create(ctx, &m); err != nil {
		return nil, err
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, queue.NewMessageEvent(actor.INumber, m)); err != nil {
			logrus.WithField("message_id", m.ID).WithError(err).Warn("event not published")
		}
	}
	return &m, nil
}
