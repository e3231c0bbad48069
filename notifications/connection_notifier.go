package notifications

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/rs/zerolog/log"
)

const sendTimeout = 15 * time.Second

// PartyResolver looks up both users of a connection.
type PartyResolver interface {
	Parties(ctx context.Context, conn models.Connection) (services.Parties, error)
}

type email struct {
	toName, toEmail string
	subject, body   string
}

// ConnectionNotifier emails the tutor about new requests and the student
// about the answer. Subscribe Handle to the event broker.
type ConnectionNotifier struct {
	mailer  Mailer
	parties PartyResolver
}

func NewConnectionNotifier(mailer Mailer, parties PartyResolver) *ConnectionNotifier {
	return &ConnectionNotifier{mailer: mailer, parties: parties}
}

// Handle sends in the background so the publishing request is not held up
// by the mail provider.
func (n *ConnectionNotifier) Handle(e services.Event) {
	switch e.Kind {
	case services.EventConnectionRequested, services.EventConnectionAccepted, services.EventConnectionRejected:
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := n.notify(ctx, e); err != nil {
				log.Error().Err(err).Str("kind", string(e.Kind)).Str("connection_id", e.Connection.ID).
					Msg("🔥 Failed to send connection email")
			}
		}()
	}
}

func (n *ConnectionNotifier) notify(ctx context.Context, e services.Event) error {
	p, err := n.parties.Parties(ctx, e.Connection)
	if err != nil {
		return err
	}
	m, ok := compose(e, p)
	if !ok {
		return nil
	}
	return n.mailer.Send(ctx, m.toName, m.toEmail, m.subject, m.body)
}

func compose(e services.Event, p services.Parties) (email, bool) {
	student := html.EscapeString(p.Student.FullName())
	tutor := html.EscapeString(p.Tutor.FullName())

	switch e.Kind {
	case services.EventConnectionRequested:
		return email{
			toName:  p.Tutor.FullName(),
			toEmail: p.Tutor.Email,
			subject: "New connection request",
			body: fmt.Sprintf("<h1>New connection request</h1><p>Hi %s,</p><p>%s (%s) would like to connect with you. "+
				"Log in to accept or reject the request.</p>", tutor, student, html.EscapeString(p.StudentProfile.Career)),
		}, true
	case services.EventConnectionAccepted:
		return email{
			toName:  p.Student.FullName(),
			toEmail: p.Student.Email,
			subject: "Your connection request was accepted",
			body: fmt.Sprintf("<h1>Request accepted</h1><p>Hi %s,</p><p>%s accepted your connection request. "+
				"You can now chat and, after your session, leave a review.</p>", student, tutor),
		}, true
	case services.EventConnectionRejected:
		return email{
			toName:  p.Student.FullName(),
			toEmail: p.Student.Email,
			subject: "Your connection request was declined",
			body:    fmt.Sprintf("<h1>Request declined</h1><p>Hi %s,</p><p>%s is not available right now.</p>", student, tutor),
		}, true
	}
	return email{}, false
}

// SendPendingReminder reminds a tutor of a request still waiting for an answer.
func SendPendingReminder(ctx context.Context, mailer Mailer, p services.Parties, conn models.Connection) error {
	body := fmt.Sprintf("<h1>Pending request</h1><p>Hi %s,</p><p>%s has been waiting since %s for you to answer "+
		"their connection request.</p>",
		html.EscapeString(p.Tutor.FullName()), html.EscapeString(p.Student.FullName()), conn.CreatedAt.Format(time.DateTime))
	return mailer.Send(ctx, p.Tutor.FullName(), p.Tutor.Email, "Reminder: a student is waiting for your answer", body)
}
