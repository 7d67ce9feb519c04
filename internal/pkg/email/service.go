package email

import (
	"bytes"
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Service sends templated emails through a background queue so callers
// (notably the billing engine) never block on delivery.
type Service struct {
	client    *SendGridClient
	templates map[string]*template.Template
	queue     chan *queuedEmail
	wg        sync.WaitGroup
	once      sync.Once
}

type queuedEmail struct {
	to       string
	toName   string
	subject  string
	template string
	data     interface{}
}

// NewService creates the email service and starts its worker
func NewService(config SendGridConfig) *Service {
	s := &Service{
		client:    NewSendGridClient(config),
		templates: make(map[string]*template.Template),
		queue:     make(chan *queuedEmail, 100),
	}

	for name, body := range map[string]string{
		"billing_receipt": BillingReceiptTemplate,
		"charge_failed":   ChargeFailedTemplate,
	} {
		tmpl, err := template.New(name).Parse(body)
		if err != nil {
			log.Error().Err(err).Str("template", name).Msg("Failed to parse email template")
			continue
		}
		s.templates[name] = tmpl
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

// Enqueue queues a templated email for async delivery. Drops (with a log
// line) when the queue is full; delivery is best-effort.
func (s *Service) Enqueue(to, toName, subject, templateName string, data interface{}) {
	select {
	case s.queue <- &queuedEmail{to: to, toName: toName, subject: subject, template: templateName, data: data}:
	default:
		log.Warn().Str("to", to).Str("template", templateName).Msg("Email queue full, dropping message")
	}
}

// Close drains the queue and stops the worker
func (s *Service) Close() {
	s.once.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}

func (s *Service) worker() {
	defer s.wg.Done()

	for item := range s.queue {
		tmpl, ok := s.templates[item.template]
		if !ok {
			log.Error().Str("template", item.template).Msg("Unknown email template")
			continue
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, item.data); err != nil {
			log.Error().Err(err).Str("template", item.template).Msg("Failed to render email")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := s.client.Send(ctx, &Message{
			To:          item.to,
			ToName:      item.toName,
			Subject:     item.subject,
			HTMLContent: buf.String(),
		})
		cancel()

		if err != nil {
			log.Error().Err(err).Str("to", item.to).Str("template", item.template).Msg("Failed to send email")
		}
	}
}
