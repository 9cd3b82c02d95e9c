package notify

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core"
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryLatestByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
		MarkRead(ctx context.Context, id string) error
		MarkAllRead(ctx context.Context, userID string) error
	}

	Service struct {
		repo   Repository
		mailer core.EmailService // nil disables email copies
		logger core.Logger
	}
)

func NewService(repo Repository, mailer core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, logger: logger}
}

// Notify stores an in-app notification. When emailTo is non-nil and a mailer
// is configured, an email copy is sent as well; email failures never fail the
// in-app write.
func (svc *Service) Notify(ctx context.Context, nn NewNotification, emailTo *mail.Address) (Notification, error) {
	n := Notification{
		UserID:    nn.UserID,
		Title:     nn.Title,
		Body:      nn.Body,
		CreatedAt: time.Now().UTC(),
	}
	n, err := svc.repo.CreateNotification(ctx, n)
	if err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}

	if svc.mailer != nil && emailTo != nil {
		svc.mailer.SendMessages(&core.EmailMessage{
			To:           []mail.Address{*emailTo},
			Subject:      nn.Title,
			TemplateName: "notification",
			TemplateData: struct{ Title, Body string }{nn.Title, nn.Body},
		})
	}
	return n, nil
}

// Latest returns the user's most recent notifications, newest first.
func (svc *Service) Latest(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return svc.repo.QueryLatestByUser(ctx, userID, limit)
}

func (svc *Service) MarkRead(ctx context.Context, id string) error {
	return svc.repo.MarkRead(ctx, id)
}

func (svc *Service) MarkAllRead(ctx context.Context, userID string) error {
	return svc.repo.MarkAllRead(ctx, userID)
}
