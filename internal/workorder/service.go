package workorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/bodycraft-erp/bodycraft-erp/internal/quotation"
	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

// Service opens work orders for converted quotations. It satisfies
// quotation.WorkOrderCreator.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateFromQuotation opens an OPEN work order carrying the quotation's
// customer, model and final total, and returns its document number. It runs
// inside the conversion transaction, so a failed conversion leaves no work
// order behind.
func (s *Service) CreateFromQuotation(ctx context.Context, q *quotation.Quotation, scheduledStart *time.Time, notes *string) (string, error) {
	docNumber, err := s.repo.GenerateNumber(ctx, time.Now().UTC())
	if err != nil {
		return "", err
	}
	_, err = s.repo.Create(ctx, WorkOrder{
		DocNumber:      docNumber,
		QuotationID:    q.ID,
		CustomerRef:    q.CustomerRef,
		VehicleModelID: q.VehicleModelID,
		Status:         StatusOpen,
		TotalAmount:    q.FinalTotal,
		ScheduledStart: scheduledStart,
		Notes:          notes,
		CreatedBy:      shared.ActorFromContext(ctx),
	})
	if err != nil {
		return "", err
	}
	s.log().Info("work order opened",
		slog.String("doc_number", docNumber),
		slog.Int64("quotation_id", q.ID))
	return docNumber, nil
}

func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger.With(slog.String("component", "workorder"))
}

var _ quotation.WorkOrderCreator = (*Service)(nil)
