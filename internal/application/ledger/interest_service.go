package ledger

import (
	"context"
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// InterestService computes overdue interest summaries. Interest accrues on
// the full original invoice amount until the invoice is fully paid; settled
// invoices stop accruing and are excluded.
type InterestService struct {
	invoiceRepo ledger.InvoiceRepository
	calculator  *ledger.InterestCalculator
}

// NewInterestService creates a new InterestService
func NewInterestService(invoiceRepo ledger.InvoiceRepository) *InterestService {
	return &InterestService{
		invoiceRepo: invoiceRepo,
		calculator:  ledger.NewInterestCalculator(),
	}
}

// TenantInterest computes the overdue interest summary for a whole tenant,
// optionally filtered to one customer.
func (s *InterestService) TenantInterest(ctx context.Context, tenantID uuid.UUID, customerID *uuid.UUID, asOf time.Time) (*InterestSummaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "interest_summary")
	defer span.End()

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, ledger.InvoiceFilter{
		CustomerID: customerID,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	open := make([]*ledger.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Status != ledger.InvoiceStatusPaid {
			open = append(open, inv)
		}
	}

	assessments, total := s.calculator.AssessAll(open, asOf)

	return &InterestSummaryResponse{
		AsOf:          asOf,
		Assessments:   assessments,
		TotalInterest: total,
	}, nil
}
