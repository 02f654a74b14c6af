package fastspring

import (
	"math"
	"strconv"
	"strings"
	"time"

	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
)

// Parameters the classifier consumes; everything else lands in Extensions.
const (
	paramType         = "type"
	paramReference    = "reference"
	paramSubscription = "subscription"
	paramProduct      = "product"
	paramEmail        = "email"
	paramCompany      = "company"
	paramName         = "name"
	paramAmount       = "amount"
	paramTotal        = "total"
	paramCurrency     = "currency"
	paramSequence     = "sequence"
	paramPeriods      = "periods"
	paramTest         = "test"
	paramEndDate      = "end_date"
	paramNextCharge   = "next_charge_date"
)

var consumedParams = map[string]struct{}{
	paramType:         {},
	paramReference:    {},
	paramSubscription: {},
	paramProduct:      {},
	paramEmail:        {},
	paramCompany:      {},
	paramName:         {},
	paramAmount:       {},
	paramTotal:        {},
	paramCurrency:     {},
	paramSequence:     {},
	paramPeriods:      {},
	paramTest:         {},
	paramEndDate:      {},
	paramNextCharge:   {},
	SignatureParam:    {},
}

// Classify normalizes a verified parameter map into an event record. Absent
// parameters get defaults; classification never fails. Deliveries without a
// type parameter come from the order-completed notification, which the
// provider sends untyped.
func Classify(params map[string]string) *billingdomain.Event {
	event := &billingdomain.Event{
		Type:           strings.TrimSpace(params[paramType]),
		Reference:      strings.TrimSpace(params[paramReference]),
		SubscriptionID: strings.TrimSpace(params[paramSubscription]),
		ProductPath:    strings.TrimSpace(params[paramProduct]),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(params[paramEmail])),
		Company:        strings.TrimSpace(params[paramCompany]),
		CustomerName:   strings.TrimSpace(params[paramName]),
		Currency:       strings.ToUpper(strings.TrimSpace(params[paramCurrency])),
		Sequence:       lenientInt(params[paramSequence]),
		Periods:        lenientInt(params[paramPeriods]),
		Test:           lenientBool(params[paramTest]),
		Extensions:     map[string]string{},
	}

	if event.Type == "" {
		event.Type = billingdomain.EventOrderCompleted
	}

	amount := strings.TrimSpace(params[paramAmount])
	if amount == "" {
		amount = strings.TrimSpace(params[paramTotal])
	}
	event.AmountCents = amountCents(amount)

	event.SubscriptionEndDate = lenientTime(params[paramEndDate])
	event.NextChargeDate = lenientTime(params[paramNextCharge])

	for key, value := range params {
		if _, ok := consumedParams[key]; ok {
			continue
		}
		event.Extensions[key] = value
	}

	return event
}

func lenientInt(value string) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func lenientBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func amountCents(value string) int64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(parsed * 100))
}

// lenientTime accepts the formats the provider has been observed to send:
// RFC 3339, date-only, and epoch milliseconds.
func lenientTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		utc := parsed.UTC()
		return &utc
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		utc := parsed.UTC()
		return &utc
	}
	if millis, err := strconv.ParseInt(value, 10, 64); err == nil && millis > 0 {
		utc := time.UnixMilli(millis).UTC()
		return &utc
	}
	return nil
}
