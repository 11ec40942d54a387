package domain

import "time"

// DocumentType selects the fiscal document issued for a sale and the
// numbering series it draws from.
type DocumentType string

const (
	DocumentTypeReceipt DocumentType = "receipt"
	DocumentTypeInvoice DocumentType = "invoice"
)

func (dt DocumentType) Valid() bool {
	return dt == DocumentTypeReceipt || dt == DocumentTypeInvoice
}

// Series is the numbering series key for this document type.
func (dt DocumentType) Series() string {
	if dt == DocumentTypeInvoice {
		return "F001"
	}
	return "B001"
}

// RequiredCustomerDocument is the customer document kind a sale of this type
// may be issued against.
func (dt DocumentType) RequiredCustomerDocument() CustomerDocument {
	if dt == DocumentTypeInvoice {
		return CustomerDocumentRUC
	}
	return CustomerDocumentDNI
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodMobileWallet PaymentMethod = "mobile_wallet"
	PaymentMethodTransfer     PaymentMethod = "transfer"
)

func (pm PaymentMethod) Valid() bool {
	switch pm {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobileWallet, PaymentMethodTransfer:
		return true
	}
	return false
}

// SaleLine is one committed product entry of a persisted sale.
type SaleLine struct {
	ProductID    int64
	Quantity     int
	UnitPrice    Money
	LineSubtotal Money
}

// Sale is a committed sale. It is immutable after commit except for
// DocumentNumber, which is assigned once by a follow-up update.
type Sale struct {
	ID             int64
	CustomerID     *int64
	ClerkID        int64
	CreatedAt      time.Time
	DocumentType   DocumentType
	PaymentMethod  PaymentMethod
	DocumentNumber *string

	Subtotal  Money
	TaxAmount Money
	Total     Money

	Lines []SaleLine
}
