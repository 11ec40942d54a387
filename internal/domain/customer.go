package domain

import "time"

// CustomerDocument is the identity document kind a customer is registered
// with. Invoices require a tax registration (RUC), receipts a national id
// (DNI).
type CustomerDocument string

const (
	CustomerDocumentDNI CustomerDocument = "DNI"
	CustomerDocumentRUC CustomerDocument = "RUC"
)

type Customer struct {
	ID             int64
	DocumentType   CustomerDocument
	DocumentNumber string
	Names          string
	LastNames      string
	Phone          string
	Email          string
	Address        string
	RegisteredAt   time.Time
}

// CanReceive reports whether this customer's document satisfies the given
// sale document type: RUC with 11 digits for invoices, DNI with 8 for
// receipts.
func (c Customer) CanReceive(dt DocumentType) bool {
	if c.DocumentType != dt.RequiredCustomerDocument() {
		return false
	}

	switch c.DocumentType {
	case CustomerDocumentRUC:
		return len(c.DocumentNumber) == 11
	case CustomerDocumentDNI:
		return len(c.DocumentNumber) == 8
	}
	return false
}
