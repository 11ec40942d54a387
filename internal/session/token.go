package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/pricing"
)

// The round-trip token is base64url-encoded JSON of the cart being assembled.
// It only carries lines and settings; totals are derived values and are
// recomputed on decode, never trusted from the wire.

type tokenPayload struct {
	ID            string      `json:"id"`
	Lines         []tokenLine `json:"lines,omitempty"`
	CustomerID    *int64      `json:"customer_id,omitempty"`
	DocumentType  string      `json:"document_type"`
	PaymentMethod string      `json:"payment_method"`
}

type tokenLine struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Currency  string `json:"currency"`
}

func encodeToken(id uuid.UUID, cart domain.Cart) (string, error) {
	payload := tokenPayload{
		ID:            id.String(),
		CustomerID:    cart.CustomerID,
		DocumentType:  string(cart.DocumentType),
		PaymentMethod: string(cart.PaymentMethod),
	}

	for _, line := range cart.Lines {
		payload.Lines = append(payload.Lines, tokenLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.Amount.String(),
			Currency:  line.UnitPrice.Currency.String(),
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}

// decodeToken rebuilds a cart from a carried-forward token. Any malformed
// input yields ok=false; callers start a fresh cart instead of failing the
// request.
func decodeToken(token string) (uuid.UUID, domain.Cart, bool) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return uuid.Nil, domain.Cart{}, false
	}

	var payload tokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return uuid.Nil, domain.Cart{}, false
	}

	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return uuid.Nil, domain.Cart{}, false
	}

	docType := domain.DocumentType(payload.DocumentType)
	payMethod := domain.PaymentMethod(payload.PaymentMethod)
	if !docType.Valid() || !payMethod.Valid() {
		return uuid.Nil, domain.Cart{}, false
	}

	cart := domain.NewCart()
	cart.CustomerID = payload.CustomerID
	cart.DocumentType = docType
	cart.PaymentMethod = payMethod

	for _, line := range payload.Lines {
		if line.Quantity <= 0 {
			return uuid.Nil, domain.Cart{}, false
		}

		amount, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			return uuid.Nil, domain.Cart{}, false
		}

		unit, err := currency.ParseISO(line.Currency)
		if err != nil {
			return uuid.Nil, domain.Cart{}, false
		}

		cart.UpsertLine(line.ProductID, line.Quantity, domain.NewMoney(amount, unit))
	}

	pricing.Recalculate(&cart)

	return id, cart, true
}
