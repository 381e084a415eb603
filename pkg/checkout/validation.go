package checkout

import (
	"regexp"
	"strconv"
	"strings"
)

// BillingInfo is the flat billing record collected at checkout.
type BillingInfo struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ShippingInfo is the flat shipping record, possibly derived from billing.
type ShippingInfo struct {
	ContactName  string `json:"contact_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Instructions string `json:"instructions"`
}

// CardDetails is the mock card input collected by the payment gateway.
type CardDetails struct {
	HolderName string `json:"holder_name"`
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

var (
	emailPattern      = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern      = regexp.MustCompile(`^[0-9+()\-\s]{7,}$`)
	cardNumberPattern = regexp.MustCompile(`^[0-9]{13,19}$`)
	cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvPattern        = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// ValidateBilling returns a field -> message map; empty means valid.
func ValidateBilling(info BillingInfo) map[string]string {
	errs := map[string]string{}
	requireNonEmpty(errs, "first_name", info.FirstName, "First name is required.")
	requireNonEmpty(errs, "last_name", info.LastName, "Last name is required.")
	if strings.TrimSpace(info.Email) == "" {
		errs["email"] = "Email is required."
	} else if !emailPattern.MatchString(strings.TrimSpace(info.Email)) {
		errs["email"] = "Enter a valid email address."
	}
	if strings.TrimSpace(info.Phone) == "" {
		errs["phone"] = "Phone number is required."
	} else if !phonePattern.MatchString(strings.TrimSpace(info.Phone)) {
		errs["phone"] = "Enter a valid phone number."
	}
	requireNonEmpty(errs, "address", info.Address, "Address is required.")
	requireNonEmpty(errs, "city", info.City, "City is required.")
	requireNonEmpty(errs, "postal_code", info.PostalCode, "Postal code is required.")
	requireNonEmpty(errs, "country", info.Country, "Country is required.")
	return errs
}

// ValidateShipping returns a field -> message map; empty means valid.
func ValidateShipping(info ShippingInfo) map[string]string {
	errs := map[string]string{}
	requireNonEmpty(errs, "contact_name", info.ContactName, "Contact name is required.")
	if strings.TrimSpace(info.Phone) == "" {
		errs["phone"] = "Phone number is required."
	} else if !phonePattern.MatchString(strings.TrimSpace(info.Phone)) {
		errs["phone"] = "Enter a valid phone number."
	}
	requireNonEmpty(errs, "address", info.Address, "Address is required.")
	requireNonEmpty(errs, "city", info.City, "City is required.")
	requireNonEmpty(errs, "postal_code", info.PostalCode, "Postal code is required.")
	return errs
}

// ValidateCard returns a field -> message map; empty means valid.
func ValidateCard(details CardDetails) map[string]string {
	errs := map[string]string{}
	requireNonEmpty(errs, "holder_name", details.HolderName, "Cardholder name is required.")
	number := strings.ReplaceAll(strings.TrimSpace(details.Number), " ", "")
	if !cardNumberPattern.MatchString(number) {
		errs["number"] = "Card number must be 13-19 digits."
	}
	if !cardExpiryPattern.MatchString(strings.TrimSpace(details.Expiry)) {
		errs["expiry"] = "Expiry must be MM/YY."
	}
	if !cvvPattern.MatchString(strings.TrimSpace(details.CVV)) {
		errs["cvv"] = "CVV must be 3-4 digits."
	}
	return errs
}

// ValidatePayPalEmail checks the PayPal account email.
func ValidatePayPalEmail(email string) map[string]string {
	errs := map[string]string{}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		errs["paypal_email"] = "PayPal email is required."
	} else if !emailPattern.MatchString(trimmed) {
		errs["paypal_email"] = "Enter a valid PayPal email address."
	}
	return errs
}

// DeriveShipping builds shipping info from billing when the shopper ships
// to the billing address: names concatenate, instructions stay empty.
func DeriveShipping(billing BillingInfo) ShippingInfo {
	return ShippingInfo{
		ContactName:  strings.TrimSpace(strings.TrimSpace(billing.FirstName) + " " + strings.TrimSpace(billing.LastName)),
		Phone:        strings.TrimSpace(billing.Phone),
		Address:      strings.TrimSpace(billing.Address),
		City:         strings.TrimSpace(billing.City),
		PostalCode:   strings.TrimSpace(billing.PostalCode),
		Instructions: "",
	}
}

// MaskCardNumber keeps only the last four digits visible.
func MaskCardNumber(number string) string {
	digits := strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if len(digits) < 4 {
		return strings.Repeat("*", len(digits))
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// MaskPayPalEmail hides the local part except its first character.
func MaskPayPalEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	at := strings.Index(trimmed, "@")
	if at <= 1 {
		return trimmed
	}
	return trimmed[:1] + strings.Repeat("*", at-1) + trimmed[at:]
}

// ExpiryMonth extracts the numeric month from an MM/YY expiry, or 0.
func ExpiryMonth(expiry string) int {
	if !cardExpiryPattern.MatchString(strings.TrimSpace(expiry)) {
		return 0
	}
	month, err := strconv.Atoi(strings.TrimSpace(expiry)[:2])
	if err != nil {
		return 0
	}
	return month
}

func requireNonEmpty(errs map[string]string, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = message
	}
}
