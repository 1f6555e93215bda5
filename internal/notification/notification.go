// Package notification describes the emails sent to claimants and builds
// their personalisation. Delivery is done by a client implementing Sender.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	claimmodels "claimflow/internal/claim/models"
	paymentmodels "claimflow/internal/payment/models"
)

type EmailType string

const (
	EmailNewCard                  EmailType = "NEW_CARD"
	EmailRegularPayment           EmailType = "REGULAR_PAYMENT"
	EmailRestartedPayment         EmailType = "RESTARTED_PAYMENT"
	EmailNewChildFromPregnancy    EmailType = "NEW_CHILD_FROM_PREGNANCY"
	EmailChildTurnsOne            EmailType = "CHILD_TURNS_ONE"
	EmailChildTurnsFour           EmailType = "CHILD_TURNS_FOUR"
	EmailReportABirthReminder     EmailType = "REPORT_A_BIRTH_REMINDER"
	EmailClaimNoLongerEligible    EmailType = "CLAIM_NO_LONGER_ELIGIBLE"
	EmailCardIsAboutToBeCancelled EmailType = "CARD_IS_ABOUT_TO_BE_CANCELLED"
)

// EmailTypes lists every email the workflow can send.
var EmailTypes = []EmailType{
	EmailNewCard,
	EmailRegularPayment,
	EmailRestartedPayment,
	EmailNewChildFromPregnancy,
	EmailChildTurnsOne,
	EmailChildTurnsFour,
	EmailReportABirthReminder,
	EmailClaimNoLongerEligible,
	EmailCardIsAboutToBeCancelled,
}

// Personalisation keys understood by the templates.
const (
	KeyFirstName            = "first_name"
	KeyLastName             = "last_name"
	KeyPaymentAmount        = "payment_amount"
	KeyPregnancyPayment     = "pregnancy_payment"
	KeyChildrenUnderOnePay  = "children_under_1_payment"
	KeyChildrenUnderFourPay = "children_under_4_payment"
	KeyBackdatedAmount      = "backdated_amount"
	KeyNextPaymentDate      = "next_payment_date"
	KeyChildrenTurningOne   = "children_turning_one"
	KeyChildrenTurningFour  = "children_turning_four"
	KeyReferenceNumber      = "reference_number"
)

// Sender delivers one email through the notification service.
type Sender interface {
	SendEmail(ctx context.Context, req SendRequest) error
}

type SendRequest struct {
	TemplateID      string
	EmailAddress    string
	Personalisation map[string]any
	Reference       string
	ReplyToID       string
}

// SendError reports a failed delivery. It always wraps the cause.
type SendError struct {
	EmailType EmailType
	Reference string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send %s email (reference %s): %v", e.EmailType, e.Reference, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

var ErrUnknownTemplate = errors.New("no template configured for email type")

// Templates resolves template ids by email type.
type Templates struct {
	ids map[EmailType]string
}

// NewTemplates builds a resolver from ids keyed by email type name. Blank ids
// are ignored.
func NewTemplates(ids map[string]string) *Templates {
	t := &Templates{ids: make(map[EmailType]string, len(ids))}
	for k, v := range ids {
		if v != "" {
			t.ids[EmailType(k)] = v
		}
	}
	return t
}

func (t *Templates) TemplateID(emailType EmailType) (string, error) {
	id, ok := t.ids[emailType]
	if !ok {
		return "", fmt.Errorf("%s: %w", emailType, ErrUnknownTemplate)
	}
	return id, nil
}

// ClaimantPersonalisation holds the fields every email carries.
func ClaimantPersonalisation(claim *claimmodels.Claim) map[string]any {
	return map[string]any{
		KeyFirstName:       claim.Claimant.FirstName,
		KeyLastName:        claim.Claimant.LastName,
		KeyReferenceNumber: claim.ID.String(),
	}
}

// PaymentPersonalisation describes the money paid for a cycle. Amounts are
// in pence.
func PaymentPersonalisation(claim *claimmodels.Claim, cycle *paymentmodels.PaymentCycle, paidInPence int, nextPaymentDate time.Time) map[string]any {
	p := ClaimantPersonalisation(claim)
	p[KeyPaymentAmount] = paidInPence
	p[KeyNextPaymentDate] = nextPaymentDate.Format(time.DateOnly)
	if e := cycle.VoucherEntitlement; e != nil {
		value := e.SingleVoucherValueInPence()
		p[KeyPregnancyPayment] = e.VouchersForPregnancy() * value
		p[KeyChildrenUnderOnePay] = e.VouchersForChildrenUnderOne() * value
		p[KeyChildrenUnderFourPay] = e.VouchersForChildrenBetweenOneAndFour() * value
		p[KeyBackdatedAmount] = e.BackdatedVouchers() * value
	}
	return p
}
