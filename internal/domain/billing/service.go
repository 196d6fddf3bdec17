package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/ward"
)

// ErrInvalidInput is returned for manual charges with a non-positive
// quantity or unit price.
var ErrInvalidInput = errors.New("invalid charge input")

type Service struct {
	ledger     TransactionRepository
	admissions *admission.Service
	beds       ward.BedRepository
	bedTypes   ward.BedTypeRepository
	runTx      admission.TxRunner
	now        func() time.Time
}

func NewService(ledger TransactionRepository, admissions *admission.Service,
	beds ward.BedRepository, bedTypes ward.BedTypeRepository, runTx admission.TxRunner) *Service {
	if runTx == nil {
		runTx = admission.PassthroughTx
	}
	return &Service{
		ledger:     ledger,
		admissions: admissions,
		beds:       beds,
		bedTypes:   bedTypes,
		runTx:      runTx,
		now:        time.Now,
	}
}

// elapsedDays computes the 1-based count of stay days covered so far:
// ceil(elapsed / 24h) with a minimum of one day, so a patient admitted an
// hour ago already owes day 1.
func elapsedDays(admittedAt, now time.Time) int {
	elapsed := now.Sub(admittedAt)
	if elapsed <= 0 {
		return 1
	}
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// PostBedCharge appends one CHARGE per uncovered stay day at the bed type's
// daily rate. Each charge carries a bed-day reference tag, and days already
// present in the ledger are skipped, so calling this any number of times
// within the same day posts nothing new. Returns the transactions appended
// by this call.
func (s *Service) PostBedCharge(ctx context.Context, admissionID uuid.UUID) ([]*Transaction, error) {
	var posted []*Transaction
	err := s.runTx(ctx, func(ctx context.Context) error {
		adm, err := s.admissions.GetAdmission(ctx, admissionID)
		if err != nil {
			return fmt.Errorf("get admission: %w", err)
		}
		if adm.Status != admission.AdmissionActive {
			return fmt.Errorf("admission %s: %w", adm.ID, admission.ErrInactiveAdmission)
		}

		bed, err := s.beds.GetByID(ctx, adm.BedID)
		if err != nil {
			return fmt.Errorf("get bed: %w", err)
		}
		bedType, err := s.bedTypes.GetByID(ctx, bed.BedTypeID)
		if err != nil {
			return fmt.Errorf("get bed type: %w", err)
		}

		existing, err := s.ledger.ListForAdmission(ctx, admissionID)
		if err != nil {
			return fmt.Errorf("list ledger: %w", err)
		}
		covered := make(map[int]bool)
		for _, t := range existing {
			if t.Reference == nil {
				continue
			}
			if day, ok := ParseBedDayRef(*t.Reference); ok {
				covered[day] = true
			}
		}

		days := elapsedDays(adm.AdmittedAt, s.now())
		for day := 1; day <= days; day++ {
			if covered[day] {
				continue
			}
			ref := BedDayRef(day)
			t := &Transaction{
				AdmissionID: &adm.ID,
				RequestID:   adm.RequestID,
				PatientID:   adm.PatientID,
				Type:        TypeCharge,
				AmountCents: bedType.DailyRateCents,
				Description: fmt.Sprintf("Bed charge day %d (%s, bed %s)", day, bedType.Name, bed.Number),
				Reference:   &ref,
			}
			if err := s.ledger.Append(ctx, t); err != nil {
				return fmt.Errorf("append bed charge: %w", err)
			}
			posted = append(posted, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

// AddCharge appends a manual CHARGE for quantity x unit price. Tax rate is
// recorded on the transaction but not folded into the amount.
func (s *Service) AddCharge(ctx context.Context, admissionID uuid.UUID, item ChargeItem) (*Transaction, error) {
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	if item.UnitPriceCents <= 0 {
		return nil, fmt.Errorf("unit price must be positive: %w", ErrInvalidInput)
	}
	if item.Name == "" {
		return nil, fmt.Errorf("item name is required: %w", ErrInvalidInput)
	}

	var txn *Transaction
	err := s.runTx(ctx, func(ctx context.Context) error {
		adm, err := s.admissions.GetAdmission(ctx, admissionID)
		if err != nil {
			return fmt.Errorf("get admission: %w", err)
		}
		if adm.Status != admission.AdmissionActive {
			return fmt.Errorf("admission %s: %w", adm.ID, admission.ErrInactiveAdmission)
		}

		txn = &Transaction{
			AdmissionID: &adm.ID,
			RequestID:   adm.RequestID,
			PatientID:   adm.PatientID,
			Type:        TypeCharge,
			AmountCents: int64(item.Quantity) * item.UnitPriceCents,
			Description: item.describe(),
			TaxRateBps:  item.TaxRateBps,
		}
		return s.ledger.Append(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// RecordDeposit appends a deposit PAYMENT against an admission request and
// advances the request to DEPOSIT_PAID in the same transaction.
func (s *Service) RecordDeposit(ctx context.Context, requestID uuid.UUID, amountCents int64) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive: %w", ErrInvalidInput)
	}

	var txn *Transaction
	err := s.runTx(ctx, func(ctx context.Context) error {
		req, err := s.admissions.SetStatus(ctx, requestID, admission.StatusDepositPaid)
		if err != nil {
			return err
		}

		ref := RefDeposit
		txn = &Transaction{
			RequestID:   &req.ID,
			PatientID:   req.PatientID,
			Type:        TypePayment,
			AmountCents: amountCents,
			Description: "Admission deposit",
			Reference:   &ref,
		}
		return s.ledger.Append(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// RecordPayment appends a PAYMENT against an active admission.
func (s *Service) RecordPayment(ctx context.Context, admissionID uuid.UUID, amountCents int64, description string) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive: %w", ErrInvalidInput)
	}
	if description == "" {
		description = "Payment received"
	}

	var txn *Transaction
	err := s.runTx(ctx, func(ctx context.Context) error {
		adm, err := s.admissions.GetAdmission(ctx, admissionID)
		if err != nil {
			return fmt.Errorf("get admission: %w", err)
		}
		txn = &Transaction{
			AdmissionID: &adm.ID,
			RequestID:   adm.RequestID,
			PatientID:   adm.PatientID,
			Type:        TypePayment,
			AmountCents: amountCents,
			Description: description,
		}
		return s.ledger.Append(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ListForAdmission returns the full ledger of an admission, oldest first.
func (s *Service) ListForAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Transaction, error) {
	return s.ledger.ListForAdmission(ctx, admissionID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	return s.ledger.ListByPatient(ctx, patientID, limit, offset)
}

// GetSummary folds the admission's ledger into totals. Integer arithmetic
// over minor units keeps the balance exact.
func (s *Service) GetSummary(ctx context.Context, admissionID uuid.UUID) (*Summary, error) {
	txns, err := s.ledger.ListForAdmission(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{AdmissionID: admissionID, Count: len(txns)}
	for _, t := range txns {
		switch t.Type {
		case TypeCharge:
			sum.TotalChargesCents += t.AmountCents
		case TypePayment:
			sum.TotalPaidCents += t.AmountCents
			if t.IsDeposit() {
				sum.TotalDepositCents += t.AmountCents
			}
		}
	}
	sum.BalanceCents = sum.TotalChargesCents - sum.TotalPaidCents
	return sum, nil
}
