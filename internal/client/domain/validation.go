package domain

import (
	"strconv"
	"strings"
)

// Validation results are plain strings: an expected user input problem is
// not an error.
const (
	reasonRequired = "required"
	maxDescription = 140
)

// ValidateAmount checks a user typed amount in dollars ("12.50"). It returns
// "" when valid.
func ValidateAmount(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return reasonRequired
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return "must have at most two decimal places"
	}
	if _, err := strconv.ParseUint(whole, 10, 63); err != nil {
		return "must be a positive number"
	}
	if hasFrac {
		if _, err := strconv.ParseUint(frac, 10, 8); err != nil {
			return "must be a positive number"
		}
	}
	if strings.Trim(whole, "0") == "" && strings.Trim(frac, "0") == "" {
		return "must be greater than zero"
	}
	return ""
}

// ParseAmount converts a validated dollar string to cents.
func ParseAmount(s string) (int64, bool) {
	if ValidateAmount(s) != "" {
		return 0, false
	}

	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	for len(frac) < 2 {
		frac += "0"
	}
	w, _ := strconv.ParseInt(whole, 10, 64)
	f, _ := strconv.ParseInt(frac, 10, 64)
	return w*100 + f, true
}

// Validate returns field → message, or nil when the input is valid.
func (in TransactionInput) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(in.ShareID) == "" {
		errs["shareId"] = reasonRequired
	}
	if in.Amount == 0 {
		errs["amount"] = "must not be zero"
	}
	desc := strings.TrimSpace(in.Description)
	switch {
	case desc == "":
		errs["description"] = reasonRequired
	case len(desc) > maxDescription:
		errs["description"] = "too long (max 140)"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate returns field → message, or nil when the input is valid.
func (in PurchaseInput) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(in.StockID) == "" {
		errs["stockId"] = reasonRequired
	}
	if strings.TrimSpace(in.ShareID) == "" {
		errs["shareId"] = reasonRequired
	}
	if in.Quantity <= 0 {
		errs["quantity"] = "must be at least 1"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
