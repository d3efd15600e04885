package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"edutrack/config"
	"edutrack/metrics"
	"edutrack/models"
	"edutrack/utils"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier delivers certificate issuance events. Callers treat delivery as
// best effort: a failure never undoes the issuance.
type Notifier interface {
	CertificateIssued(ctx context.Context, ev models.CertificateIssued) error
	Close() error
}

// New selects the channel named by cfg.Notifier.
func New(cfg *config.Config, m *metrics.Metrics) (Notifier, error) {
	var n Notifier
	switch cfg.Notifier {
	case "", "log":
		n = &LogNotifier{BaseURL: cfg.CertificateBaseURL, Brand: cfg.EmailSenderName}
	case "sendgrid":
		n = NewSendGridNotifier(
			sendgrid.NewSendClient(cfg.SendGridAPIKey),
			cfg.EmailSender, cfg.EmailSenderName, cfg.CertificateBaseURL,
		)
	case "kafka":
		n = NewKafkaNotifier(&kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		})
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
	return &instrumented{next: n, channel: channelName(cfg.Notifier), metrics: m}, nil
}

func channelName(name string) string {
	if name == "" {
		return "log"
	}
	return name
}

type instrumented struct {
	next    Notifier
	channel string
	metrics *metrics.Metrics
}

func (i *instrumented) CertificateIssued(ctx context.Context, ev models.CertificateIssued) error {
	err := i.next.CertificateIssued(ctx, ev)
	i.metrics.Notified(i.channel, err)
	return err
}

func (i *instrumented) Close() error { return i.next.Close() }

// LogNotifier renders the email and only logs it.
type LogNotifier struct {
	BaseURL string
	Brand   string
}

func (l *LogNotifier) CertificateIssued(_ context.Context, ev models.CertificateIssued) error {
	msg, err := utils.RenderCertificateEmail(ev, l.BaseURL, l.Brand)
	if err != nil {
		return err
	}
	log.Info().
		Str("component", "notifier").
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("certificate_number", ev.CertificateNumber).
		Msg("certificate email (log only)")
	return nil
}

func (l *LogNotifier) Close() error { return nil }

// MailClient is the part of the SendGrid client used here.
type MailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier emails the participant through SendGrid.
type SendGridNotifier struct {
	client     MailClient
	from       *mail.Email
	baseURL    string
	senderName string
}

func NewSendGridNotifier(client MailClient, sender, senderName, baseURL string) *SendGridNotifier {
	return &SendGridNotifier{
		client:     client,
		from:       mail.NewEmail(senderName, sender),
		baseURL:    baseURL,
		senderName: senderName,
	}
}

func (s *SendGridNotifier) CertificateIssued(ctx context.Context, ev models.CertificateIssued) error {
	if ev.Email == "" {
		return errors.Errorf("no email address for certificate %s", ev.CertificateNumber)
	}
	msg, err := utils.RenderCertificateEmail(ev, s.baseURL, s.senderName)
	if err != nil {
		return err
	}
	to := mail.NewEmail(ev.ParticipantName, msg.To)
	plain := fmt.Sprintf("Your certificate %s for %s has been issued.", ev.CertificateNumber, ev.TrainingName)

	resp, err := s.client.SendWithContext(ctx, mail.NewSingleEmail(s.from, msg.Subject, to, plain, msg.HTML))
	if err != nil {
		return errors.Wrap(err, "sendgrid send")
	}
	if resp.StatusCode >= 300 {
		return errors.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}
	log.Info().Str("component", "notifier").Str("to", msg.To).Str("certificate_number", ev.CertificateNumber).Msg("certificate email sent")
	return nil
}

func (s *SendGridNotifier) Close() error { return nil }

// MessageWriter is the part of kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes the event as JSON keyed by certificate number.
type KafkaNotifier struct {
	writer MessageWriter
}

func NewKafkaNotifier(writer MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (k *KafkaNotifier) CertificateIssued(ctx context.Context, ev models.CertificateIssued) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal certificate event")
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.CertificateNumber),
		Value: payload,
	})
	if err != nil {
		return errors.Wrap(err, "produce certificate event")
	}
	return nil
}

func (k *KafkaNotifier) Close() error { return k.writer.Close() }
