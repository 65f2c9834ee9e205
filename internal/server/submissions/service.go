// Package submissions validates premium submissions and appends them to the
// ledger. It is shared by the JSON endpoint and the hosted form gateway.
package submissions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/logging"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/auth"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/catalog"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/changelog"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/ledger"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/metrics"
	"github.com/google/uuid"
)

// Request is a submission as received; Premium is the raw text so numeric
// strings and JSON numbers are treated alike.
type Request struct {
	Company string
	Plate   string
	Premium string
	User    string
}

type Service struct {
	ledger    ledger.Repository
	catalog   catalog.Source
	publisher changelog.Publisher
	metrics   *metrics.Registry
	logger    logging.Logger

	now   func() time.Time
	newID func() string
}

func NewService(l ledger.Repository, c catalog.Source, p changelog.Publisher, m *metrics.Registry, logger logging.Logger) *Service {
	if p == nil {
		p = changelog.Nop{}
	}
	return &Service{
		ledger:    l,
		catalog:   c,
		publisher: p,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Submit checks the caller and the request, then appends one record.
// Errors wrap common.ErrorForbidden, common.ErrorValidation or
// common.ErrorInternal.
func (s *Service) Submit(ctx context.Context, id auth.Identity, req Request) (premium.SubmissionRecord, error) {
	if !id.HasRole(common.RoleBroker, common.RoleAdmin) {
		s.count("forbidden")
		return premium.SubmissionRecord{}, fmt.Errorf("%w: broker or admin role required", common.ErrorForbidden)
	}

	req.Company = strings.TrimSpace(req.Company)
	req.Plate = strings.TrimSpace(req.Plate)
	req.User = strings.TrimSpace(req.User)

	var missing []string
	if req.Company == "" {
		missing = append(missing, "company")
	}
	if req.Plate == "" {
		missing = append(missing, "plate")
	}
	amount, ok := premium.ParsePositivePremium(req.Premium)
	if !ok {
		missing = append(missing, "premium")
	}
	if req.User == "" {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		s.count("invalid")
		return premium.SubmissionRecord{}, fmt.Errorf("%w: missing or invalid %s", common.ErrorValidation, strings.Join(missing, ", "))
	}

	if !strings.EqualFold(req.User, id.Email) {
		s.count("forbidden")
		return premium.SubmissionRecord{}, fmt.Errorf("%w: user does not match the signed-in account", common.ErrorForbidden)
	}

	rec := premium.NewSubmission(s.newID(), req.Company, req.Plate, amount, req.User, s.now())
	if err := s.ledger.Append(ctx, rec); err != nil {
		s.count("failed")
		if s.metrics != nil {
			s.metrics.LedgerErrors.Inc()
		}
		s.logger.Error(ctx, "ledger append failed", "company", rec.Company, "plate", rec.Plate, "error", err)
		return premium.SubmissionRecord{}, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.count("accepted")
	if s.metrics != nil {
		s.metrics.SubmittedPremium.Add(rec.Premium)
		s.metrics.CommissionTotal.Add(rec.Commission)
	}
	s.logger.Info(ctx, "premium appended", "id", rec.ID, "company", rec.Company, "plate", rec.Plate, "user", rec.User)

	if err := s.publisher.Publish(ctx, rec); err != nil {
		if s.metrics != nil {
			s.metrics.PublishErrors.Inc()
		}
		s.logger.Warn(ctx, "changelog publish failed", "id", rec.ID, "error", err)
	}

	return rec, nil
}

// ResolveCompany finds the single company that lists plate in the catalog.
func (s *Service) ResolveCompany(ctx context.Context, plate string) (string, error) {
	c, err := s.catalog.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	companies := c.CompaniesForPlate(strings.TrimSpace(plate))
	switch len(companies) {
	case 0:
		return "", fmt.Errorf("%w: plate %q is not in the catalog", common.ErrorValidation, plate)
	case 1:
		return companies[0], nil
	default:
		return "", fmt.Errorf("%w: plate %q is registered under %s, company is required",
			common.ErrorValidation, plate, strings.Join(companies, ", "))
	}
}

// List returns the full ledger for the admin view.
func (s *Service) List(ctx context.Context) ([]premium.SubmissionRecord, error) {
	records, err := s.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return records, nil
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}
