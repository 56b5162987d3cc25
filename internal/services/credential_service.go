package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/metrics"
	"complexcare/internal/models"
	"complexcare/internal/utils"
)

const (
	DefaultExpiryWindowDays = 30
	MaxExpiryWindowDays     = 365
)

type CredentialStore interface {
	Create(ctx context.Context, c *models.Credential) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Credential, error)
	Update(ctx context.Context, c *models.Credential) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	InsertAudit(ctx context.Context, a *models.CredentialAudit) error
	ListAudit(ctx context.Context, tenantID, credentialID uuid.UUID) ([]models.CredentialAudit, error)
	ListByProfessional(ctx context.Context, tenantID, careProfessionalID uuid.UUID) ([]models.Credential, error)
	ListExpiring(ctx context.Context, tenantID uuid.UUID, until time.Time) ([]models.Credential, error)
	DueReminders(ctx context.Context, asOf time.Time) ([]models.Credential, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

type NotificationCreator interface {
	Create(ctx context.Context, n *models.Notification) error
}

type CredentialService struct {
	credentials   CredentialStore
	professionals CareProfessionalGetter
	notifications NotificationCreator
	tx            Transactor
	log           *zap.Logger
	now           func() time.Time
}

func NewCredentialService(credentials CredentialStore, professionals CareProfessionalGetter, notifications NotificationCreator, tx Transactor, log *zap.Logger) *CredentialService {
	return &CredentialService{
		credentials:   credentials,
		professionals: professionals,
		notifications: notifications,
		tx:            tx,
		log:           log,
		now:           time.Now,
	}
}

type CredentialInput struct {
	Type      string  `json:"type"`
	Reference *string `json:"reference"`
	IssuedOn  *string `json:"issued_on"`
	ExpiresOn *string `json:"expires_on"`
}

func (in CredentialInput) apply(c *models.Credential) error {
	t := strings.ToLower(strings.TrimSpace(in.Type))
	if !utils.Contains(models.CredentialTypes, t) {
		return invalidf("type must be one of %s", strings.Join(models.CredentialTypes, ", "))
	}
	issued, err := parseDate("issued_on", in.IssuedOn)
	if err != nil {
		return err
	}
	expires, err := parseDate("expires_on", in.ExpiresOn)
	if err != nil {
		return err
	}
	if issued != nil && expires != nil && expires.Before(*issued) {
		return invalidf("expires_on must not be before issued_on")
	}
	c.Type = t
	c.Reference = in.Reference
	c.IssuedOn = issued
	c.ExpiresOn = expires
	c.ReminderDate = models.ReminderDateFor(expires)
	return nil
}

func (s *CredentialService) withStatus(c *models.Credential) *models.Credential {
	c.Status = c.StatusAt(s.now())
	return c
}

func (s *CredentialService) audit(ctx context.Context, actor Actor, credentialID uuid.UUID, action string) error {
	actorID := actor.UserID
	return storeErr("audit credential", s.credentials.InsertAudit(ctx, &models.CredentialAudit{
		TenantID:     actor.TenantID,
		CredentialID: credentialID,
		Action:       action,
		ActorID:      &actorID,
	}))
}

func (s *CredentialService) Create(ctx context.Context, actor Actor, careProfessionalID uuid.UUID, in CredentialInput) (*models.Credential, error) {
	c := &models.Credential{TenantID: actor.TenantID, CareProfessionalID: careProfessionalID}
	if err := in.apply(c); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		cp, err := s.professionals.GetByID(ctx, actor.TenantID, careProfessionalID)
		if err != nil {
			return storeErr("get care professional", err)
		}
		if cp == nil {
			return notFound("care professional")
		}
		if err := s.credentials.Create(ctx, c); err != nil {
			return storeErr("create credential", err)
		}
		return s.audit(ctx, actor, c.ID, "create")
	})
	if err != nil {
		return nil, err
	}
	return s.withStatus(c), nil
}

func (s *CredentialService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Credential, error) {
	c, err := s.credentials.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("get credential", err)
	}
	if c == nil {
		return nil, notFound("credential")
	}
	return s.withStatus(c), nil
}

func (s *CredentialService) Update(ctx context.Context, actor Actor, id uuid.UUID, in CredentialInput) (*models.Credential, error) {
	c := &models.Credential{ID: id, TenantID: actor.TenantID}
	if err := in.apply(c); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.credentials.Update(ctx, c); err != nil {
			return storeErr("update credential", err)
		}
		return s.audit(ctx, actor, c.ID, "update")
	})
	if err != nil {
		return nil, err
	}
	return s.withStatus(c), nil
}

func (s *CredentialService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.credentials.Delete(ctx, actor.TenantID, id); err != nil {
			return storeErr("delete credential", err)
		}
		return s.audit(ctx, actor, id, "delete")
	})
}

func (s *CredentialService) History(ctx context.Context, actor Actor, id uuid.UUID) ([]models.CredentialAudit, error) {
	entries, err := s.credentials.ListAudit(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("credential history", err)
	}
	return entries, nil
}

func (s *CredentialService) ListByProfessional(ctx context.Context, actor Actor, careProfessionalID uuid.UUID) ([]models.Credential, error) {
	list, err := s.credentials.ListByProfessional(ctx, actor.TenantID, careProfessionalID)
	if err != nil {
		return nil, storeErr("list credentials", err)
	}
	for i := range list {
		s.withStatus(&list[i])
	}
	return list, nil
}

// ListExpiring returns credentials that expire within days, expired ones
// included. days defaults to DefaultExpiryWindowDays and is capped at
// MaxExpiryWindowDays.
func (s *CredentialService) ListExpiring(ctx context.Context, actor Actor, days int) ([]models.Credential, error) {
	if days <= 0 {
		days = DefaultExpiryWindowDays
	}
	days = min(days, MaxExpiryWindowDays)
	until := startOfDay(s.now()).AddDate(0, 0, days)
	list, err := s.credentials.ListExpiring(ctx, actor.TenantID, until)
	if err != nil {
		return nil, storeErr("list expiring credentials", err)
	}
	for i := range list {
		s.withStatus(&list[i])
	}
	return list, nil
}

// SendDueReminders notifies tenants about every credential whose reminder
// date has passed and marks each reminder sent. Each credential is handled
// in its own transaction so one failure does not block the rest.
func (s *CredentialService) SendDueReminders(ctx context.Context) (int, error) {
	due, err := s.credentials.DueReminders(ctx, startOfDay(s.now()))
	if err != nil {
		return 0, storeErr("due reminders", err)
	}

	sent := 0
	for i := range due {
		c := due[i]
		err := s.tx.WithTx(ctx, func(ctx context.Context) error {
			n := s.reminderNotification(ctx, &c)
			if err := s.notifications.Create(ctx, n); err != nil {
				return err
			}
			return s.credentials.MarkReminderSent(ctx, c.ID)
		})
		if err != nil {
			s.log.Error("failed to send credential reminder", zap.String("credential_id", c.ID.String()), zap.Error(err))
			continue
		}
		sent++
	}
	if sent > 0 {
		metrics.RecordRemindersSent(sent)
		s.log.Info("credential reminders sent", zap.Int("count", sent), zap.Int("due", len(due)))
	}
	return sent, nil
}

func (s *CredentialService) reminderNotification(ctx context.Context, c *models.Credential) *models.Notification {
	who := "a care professional"
	if cp, err := s.professionals.GetByID(ctx, c.TenantID, c.CareProfessionalID); err == nil && cp != nil {
		who = cp.FullName()
	}
	label := strings.ToUpper(strings.ReplaceAll(c.Type, "_", " "))
	body := fmt.Sprintf("The %s credential for %s has no expiry date.", label, who)
	if c.ExpiresOn != nil {
		body = fmt.Sprintf("The %s credential for %s expires on %s.", label, who, c.ExpiresOn.Format(dateLayout))
	}
	return &models.Notification{
		TenantID: c.TenantID,
		Kind:     models.NotificationCredentialExpiry,
		Title:    label + " credential expiring",
		Body:     body,
	}
}
