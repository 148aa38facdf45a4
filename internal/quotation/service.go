package quotation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bodycraft-erp/bodycraft-erp/internal/catalog"
	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

// PriceResolver supplies catalog unit prices by specificity.
type PriceResolver interface {
	Resolve(ctx context.Context, key catalog.PriceKey) (decimal.Decimal, error)
}

// WorkOrderCreator opens a work order for a converted quotation and returns
// its document number. It runs inside the conversion transaction.
type WorkOrderCreator interface {
	CreateFromQuotation(ctx context.Context, q *Quotation, scheduledStart *time.Time, notes *string) (string, error)
}

// Auditor records mutations. Audit failures are logged, never fatal.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the quotation engine: pricing, the discount ledger,
// version snapshots, the status machine and conversion.
type Service struct {
	repo       Repository
	prices     PriceResolver
	workOrders WorkOrderCreator
	audit      Auditor
	logger     *slog.Logger
}

func NewService(repo Repository, prices PriceResolver, workOrders WorkOrderCreator, audit Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, prices: prices, workOrders: workOrders, audit: audit, logger: logger}
}

// Create opens a DRAFT quotation, pricing any submitted lines in the same
// transaction. A quotation with no lines is valid and has base total zero.
func (s *Service) Create(ctx context.Context, req CreateQuotationRequest) (*View, error) {
	actor := shared.ActorFromContext(ctx)
	var created int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		docNumber, err := repo.GenerateNumber(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		id, err := repo.Create(ctx, Quotation{
			DocNumber:      docNumber,
			CustomerRef:    req.CustomerRef,
			VehicleModelID: req.VehicleModelID,
			Status:         StatusDraft,
			BaseTotal:      decimal.Zero,
			Notes:          req.Notes,
			CreatedBy:      actor,
		})
		if err != nil {
			return err
		}
		base := decimal.Zero
		for _, lineReq := range req.Lines {
			line, err := s.buildLine(ctx, id, req.VehicleModelID, lineReq)
			if err != nil {
				return err
			}
			if _, err := repo.InsertLine(ctx, *line); err != nil {
				return err
			}
			base = base.Add(line.TotalPrice)
		}
		if !base.IsZero() {
			if err := repo.UpdateBaseTotal(ctx, id, base); err != nil {
				return err
			}
		}
		created = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "quotation.create", created, map[string]any{
		"customer_ref":     req.CustomerRef,
		"vehicle_model_id": req.VehicleModelID,
	})
	return s.Get(ctx, created)
}

// Get returns the quotation with its ledger and derived totals.
func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	discounts, err := s.repo.ListDiscounts(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildView(q, discounts), nil
}

func buildView(q *Quotation, discounts []DiscountEntry) *View {
	discounted := ComputeDiscountedTotal(q.BaseTotal, discounts)
	return &View{
		Quotation:       *q,
		DiscountTotal:   q.BaseTotal.Sub(discounted),
		DiscountedTotal: discounted,
		Discounts:       discounts,
	}
}

// List pages through quotations, optionally filtered by customer and status.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Quotation, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Status != nil {
		switch *req.Status {
		case StatusDraft, StatusReview, StatusApproved, StatusRejected, StatusConverted:
		default:
			return nil, 0, shared.E(shared.KindValidation, "unknown status filter").
				With("status", string(*req.Status))
		}
	}
	return s.repo.List(ctx, req)
}

// AddFeature appends a line item and recomputes the base total. A manual
// unit price always wins over the catalog; custom lines require one.
func (s *Service) AddFeature(ctx context.Context, id int64, req AddFeatureRequest) (*View, error) {
	actor := shared.ActorFromContext(ctx)
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := EnsureMutable(q.Status, ActionAddFeature); err != nil {
			return err
		}
		line, err := s.buildLine(ctx, id, q.VehicleModelID, req)
		if err != nil {
			return err
		}
		if _, err := repo.InsertLine(ctx, *line); err != nil {
			return err
		}
		base := RecomputeBase(append(q.Lines, *line))
		if err := repo.UpdateBaseTotal(ctx, id, base); err != nil {
			return err
		}
		return repo.BumpLockVersion(ctx, id, q.LockVersion)
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "quotation.add_feature", id, nil)
	return s.Get(ctx, id)
}

// RemoveFeature deletes a line item and recomputes the base total.
func (s *Service) RemoveFeature(ctx context.Context, id, lineID int64) (*View, error) {
	actor := shared.ActorFromContext(ctx)
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := EnsureMutable(q.Status, ActionRemoveFeature); err != nil {
			return err
		}
		if err := repo.DeleteLine(ctx, id, lineID); err != nil {
			return err
		}
		remaining := make([]LineItem, 0, len(q.Lines))
		for _, l := range q.Lines {
			if l.ID != lineID {
				remaining = append(remaining, l)
			}
		}
		if err := repo.UpdateBaseTotal(ctx, id, RecomputeBase(remaining)); err != nil {
			return err
		}
		return repo.BumpLockVersion(ctx, id, q.LockVersion)
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "quotation.remove_feature", id, map[string]any{"line_id": lineID})
	return s.Get(ctx, id)
}

func (s *Service) buildLine(ctx context.Context, quotationID, vehicleModelID int64, req AddFeatureRequest) (*LineItem, error) {
	custom := req.CustomName != nil && *req.CustomName != ""
	if custom && req.FeatureTypeID != nil {
		return nil, shared.E(shared.KindValidation, "line is either a catalog feature or a custom item, not both")
	}
	if !custom && req.FeatureTypeID == nil && req.FeatureCategoryID == nil {
		return nil, shared.E(shared.KindValidation, "line needs a feature reference or a custom name")
	}

	var unitPrice decimal.Decimal
	switch {
	case req.UnitPrice != nil:
		if req.UnitPrice.IsNegative() {
			return nil, shared.E(shared.KindValidation, "unit price must not be negative").
				With("unit_price", req.UnitPrice.String())
		}
		unitPrice = *req.UnitPrice
	case custom:
		return nil, shared.E(shared.KindValidation, "custom items require a manual unit price")
	default:
		resolved, err := s.prices.Resolve(ctx, catalog.PriceKey{
			VehicleModelID:    vehicleModelID,
			FeatureCategoryID: req.FeatureCategoryID,
			FeatureTypeID:     req.FeatureTypeID,
		})
		if err != nil {
			return nil, err
		}
		unitPrice = resolved
	}

	return &LineItem{
		QuotationID:       quotationID,
		FeatureTypeID:     req.FeatureTypeID,
		FeatureCategoryID: req.FeatureCategoryID,
		CustomName:        req.CustomName,
		Quantity:          req.Quantity,
		UnitPrice:         unitPrice,
		TotalPrice:        LineTotal(req.Quantity, unitPrice),
	}, nil
}

// AddDiscount appends a PENDING ledger entry. It does not change any total
// until approved.
func (s *Service) AddDiscount(ctx context.Context, id int64, req AddDiscountRequest) (*View, error) {
	actor := shared.ActorFromContext(ctx)
	if err := ValidateDiscount(req.Mode, req.Value); err != nil {
		return nil, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := EnsureMutable(q.Status, ActionAddDiscount); err != nil {
			return err
		}
		_, err = repo.InsertDiscount(ctx, DiscountEntry{
			QuotationID: id,
			Mode:        req.Mode,
			Value:       req.Value,
			Status:      DiscountPending,
			Note:        req.Note,
			CreatedBy:   actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "quotation.add_discount", id, map[string]any{
		"mode":  string(req.Mode),
		"value": req.Value.String(),
	})
	return s.Get(ctx, id)
}

// ResolveDiscount approves or rejects a pending ledger entry. The resolution
// is a check-and-set: of two racing resolutions exactly one wins, the other
// fails with INVALID_STATE.
func (s *Service) ResolveDiscount(ctx context.Context, id, discountID int64, approve bool) (*View, error) {
	actor := shared.ActorFromContext(ctx)
	target := DiscountRejected
	if approve {
		target = DiscountApproved
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := EnsureMutable(q.Status, ActionResolveDiscount); err != nil {
			return err
		}
		if err := repo.ResolveDiscount(ctx, id, discountID, target, actor); err != nil {
			return err
		}
		return repo.BumpLockVersion(ctx, id, q.LockVersion)
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "quotation.resolve_discount", id, map[string]any{
		"discount_id": discountID,
		"resolution":  string(target),
	})
	return s.Get(ctx, id)
}

// CreateVersion snapshots the current totals after one hypothetical
// adjustment. The snapshot is immutable: later changes to lines or the
// ledger never touch it.
func (s *Service) CreateVersion(ctx context.Context, id int64, req CreateVersionRequest) (*VersionSnapshot, error) {
	actor := shared.ActorFromContext(ctx)
	if err := ValidateDiscount(req.Mode, req.Value); err != nil {
		return nil, err
	}
	var snapshot *VersionSnapshot
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := EnsureMutable(q.Status, ActionCreateVersion); err != nil {
			return err
		}
		discounts, err := repo.ListDiscounts(ctx, id)
		if err != nil {
			return err
		}
		// The adjustment stacks on the current discounted total, so the
		// snapshot carries the approved ledger as it stood.
		running := ComputeDiscountedTotal(q.BaseTotal, discounts)
		discounted := ApplyAdjustment(running, req.Mode, req.Value)
		mode := req.Mode
		value := req.Value
		snapshot, err = repo.InsertVersion(ctx, VersionSnapshot{
			QuotationID:     id,
			BaseTotal:       q.BaseTotal,
			DiscountTotal:   q.BaseTotal.Sub(discounted),
			DiscountedTotal: discounted,
			Mode:            &mode,
			Value:           &value,
			Note:            req.Note,
			CreatedBy:       actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "quotation.create_version", id, map[string]any{
		"version_number": snapshot.VersionNumber,
	})
	return snapshot, nil
}

// ListVersions returns the snapshot history in version order.
func (s *Service) ListVersions(ctx context.Context, id int64) ([]VersionSnapshot, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, id)
}

// SubmitForReview moves DRAFT to REVIEW.
func (s *Service) SubmitForReview(ctx context.Context, id int64) (*View, error) {
	return s.transition(ctx, id, ActionSubmitForReview, nil)
}

// Approve moves REVIEW to APPROVED. Without an explicit final total the
// discounted total computed inside the transaction becomes final.
func (s *Service) Approve(ctx context.Context, id int64, req ApproveRequest) (*View, error) {
	if req.FinalTotal != nil && req.FinalTotal.IsNegative() {
		return nil, shared.E(shared.KindValidation, "final total must not be negative").
			With("final_total", req.FinalTotal.String())
	}
	return s.transition(ctx, id, ActionApprove, req.FinalTotal)
}

// Reject moves REVIEW to REJECTED. Terminal.
func (s *Service) Reject(ctx context.Context, id int64) (*View, error) {
	return s.transition(ctx, id, ActionReject, nil)
}

func (s *Service) transition(ctx context.Context, id int64, action Action, explicitFinal *decimal.Decimal) (*View, error) {
	actor := shared.ActorFromContext(ctx)
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next, err := Transition(q.Status, action)
		if err != nil {
			return err
		}
		var final *decimal.Decimal
		if next == StatusApproved {
			final = explicitFinal
			if final == nil {
				discounts, err := repo.ListDiscounts(ctx, id)
				if err != nil {
					return err
				}
				d := ComputeDiscountedTotal(q.BaseTotal, discounts)
				final = &d
			}
		}
		return repo.UpdateStatus(ctx, id, q.Status, next, actor, final)
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "quotation."+string(action), id, nil)
	return s.Get(ctx, id)
}

// Override replaces the final total directly, recording the replaced value.
// Allowed in any non-terminal state.
func (s *Service) Override(ctx context.Context, id int64, req OverrideRequest) (*View, error) {
	actor := shared.ActorFromContext(ctx)
	if req.FinalTotal.IsNegative() {
		return nil, shared.E(shared.KindValidation, "final total must not be negative").
			With("final_total", req.FinalTotal.String())
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := EnsureMutable(q.Status, ActionOverride); err != nil {
			return err
		}
		if _, err := repo.InsertOverride(ctx, OverrideRecord{
			QuotationID:   id,
			OldFinalTotal: q.FinalTotal,
			NewFinalTotal: req.FinalTotal,
			Note:          req.Note,
			Actor:         actor,
		}); err != nil {
			return err
		}
		if err := repo.SetFinalTotal(ctx, id, req.FinalTotal); err != nil {
			return err
		}
		return repo.BumpLockVersion(ctx, id, q.LockVersion)
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "quotation.override", id, map[string]any{
		"final_total": req.FinalTotal.String(),
	})
	return s.Get(ctx, id)
}

// ListOverrides returns the override audit trail.
func (s *Service) ListOverrides(ctx context.Context, id int64) ([]OverrideRecord, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListOverrides(ctx, id)
}

// Convert turns an APPROVED quotation into a work order exactly once. The
// status check-and-set and the work order insert share one transaction, so a
// concurrent convert either sees CONVERTED or loses the check-and-set.
func (s *Service) Convert(ctx context.Context, id int64, req ConvertRequest) (*View, error) {
	actor := shared.ActorFromContext(ctx)
	var workOrderID string
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next, err := Transition(q.Status, ActionConvert)
		if err != nil {
			return err
		}
		if err := repo.UpdateStatus(ctx, id, q.Status, next, actor, nil); err != nil {
			return err
		}
		workOrderID, err = s.workOrders.CreateFromQuotation(ctx, q, req.ScheduledStart, req.Notes)
		if err != nil {
			return err
		}
		return repo.SetWorkOrder(ctx, id, workOrderID)
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "quotation.convert", id, map[string]any{
		"work_order_id": workOrderID,
	})
	return s.Get(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "quotation",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       time.Now().UTC(),
	})
	if err != nil {
		s.log().Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger.With(slog.String("component", "quotation"))
}
