package payment

import "time"

// MethodType is the kind of payment instrument.
type MethodType string

const (
	MethodCard         MethodType = "card"
	MethodPayPal       MethodType = "paypal"
	MethodIDEAL        MethodType = "ideal"
	MethodMobilePay    MethodType = "mobile-pay"
	MethodBankTransfer MethodType = "bank-transfer"
)

// MethodTypes lists every method type in selector order.
var MethodTypes = []MethodType{MethodCard, MethodPayPal, MethodIDEAL, MethodMobilePay, MethodBankTransfer}

// Status is the verification state of a stored method.
type Status string

const (
	StatusVerified    Status = "verified"
	StatusExpired     Status = "expired"
	StatusNeedsUpdate Status = "needs-update"
	StatusError       Status = "error"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusVerified, StatusExpired, StatusNeedsUpdate, StatusError:
		return true
	}
	return false
}

// Variant is the derived readiness of a profile.
type Variant string

const (
	VariantEmpty   Variant = "empty"
	VariantActive  Variant = "active"
	VariantExpired Variant = "expired"
	VariantError   Variant = "error"
)

// Method is a stored payment method.
type Method struct {
	ID          string     `json:"id"`
	Type        MethodType `json:"type"`
	IsDefault   bool       `json:"isDefault"`
	DisplayName string     `json:"displayName"`
	Status      Status     `json:"status"`
	ExpiryDate  string     `json:"expiryDate,omitempty"`
	LastUsed    time.Time  `json:"lastUsed,omitzero"`
}

// Profile is the persisted record. HasProfile is true exactly when Methods
// is non-empty, and then exactly one method is the default.
type Profile struct {
	Methods    []Method `json:"methods"`
	HasProfile bool     `json:"hasProfile"`
}

func (p Profile) clone() Profile {
	p.Methods = append([]Method(nil), p.Methods...)
	return p
}

func (p Profile) index(id string) int {
	for i, m := range p.Methods {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (p Profile) defaultMethod() (Method, bool) {
	for _, m := range p.Methods {
		if m.IsDefault {
			return m, true
		}
	}
	return Method{}, false
}

// DisplayName returns the label stored for a newly saved method of type t.
// Cards are labelled by their last four digits.
func DisplayName(t MethodType, cardNumber string) string {
	switch t {
	case MethodCard:
		return "Card •••• " + lastFour(cardNumber)
	case MethodPayPal:
		return "PayPal Account"
	case MethodIDEAL:
		return "iDEAL"
	case MethodMobilePay:
		return "Apple Pay"
	case MethodBankTransfer:
		return "Bank Account"
	}
	return string(t)
}

func lastFour(number string) string {
	digits := make([]rune, 0, len(number))
	for _, r := range number {
		if r != ' ' && r != '\t' {
			digits = append(digits, r)
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return string(digits)
}
