package fastspring

import (
	"testing"
	"time"

	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
)

func TestClassifyFullPayload(t *testing.T) {
	params := map[string]string{
		"type":         "subscription.charge.completed",
		"reference":    "ORD42",
		"subscription": "SUB7",
		"product":      "modulyn-one-plus",
		"email":        "Owner@Acme.COM",
		"company":      "Acme",
		"name":         "Jo Owner",
		"amount":       "59.00",
		"currency":     "usd",
		"sequence":     "3",
		"periods":      "12",
		"test":         "true",
	}

	event := Classify(params)
	if event.Type != billingdomain.EventChargeCompleted {
		t.Fatalf("type: %q", event.Type)
	}
	if event.Reference != "ORD42" || event.SubscriptionID != "SUB7" {
		t.Fatalf("ids: %q %q", event.Reference, event.SubscriptionID)
	}
	if event.CustomerEmail != "owner@acme.com" {
		t.Fatalf("email must be lowercased: %q", event.CustomerEmail)
	}
	if event.AmountCents != 5900 || event.Currency != "USD" {
		t.Fatalf("amount: %d %q", event.AmountCents, event.Currency)
	}
	if event.Sequence != 3 || event.Periods != 12 || !event.Test {
		t.Fatalf("metadata: %d %d %v", event.Sequence, event.Periods, event.Test)
	}
}

func TestClassifyDefaultsSparsePayload(t *testing.T) {
	event := Classify(map[string]string{"email": "a@b.com"})
	if event.Type != billingdomain.EventOrderCompleted {
		t.Fatalf("untyped deliveries are order notifications, got %q", event.Type)
	}
	if event.Reference != "" || event.Sequence != 0 || event.AmountCents != 0 {
		t.Fatalf("absent fields must default, got %+v", event)
	}
	if event.SubscriptionEndDate != nil || event.NextChargeDate != nil {
		t.Fatal("absent dates must stay nil")
	}
}

func TestClassifyCollectsExtensions(t *testing.T) {
	params := map[string]string{
		"email":                 "a@b.com",
		"referrer":              "aff-99",
		"tags":                  "promo",
		"security_request_hash": "abc",
	}
	event := Classify(params)
	if event.Extensions["referrer"] != "aff-99" || event.Extensions["tags"] != "promo" {
		t.Fatalf("unrecognized params must land in extensions: %+v", event.Extensions)
	}
	if _, ok := event.Extensions["security_request_hash"]; ok {
		t.Fatal("signature must not leak into extensions")
	}
	if _, ok := event.Extensions["email"]; ok {
		t.Fatal("consumed params must not duplicate into extensions")
	}
}

func TestClassifyLenientDates(t *testing.T) {
	event := Classify(map[string]string{
		"type":             "subscription.cancelled",
		"end_date":         "2026-09-30",
		"next_charge_date": "2026-09-30T12:00:00Z",
	})
	if event.SubscriptionEndDate == nil || event.SubscriptionEndDate.Format("2006-01-02") != "2026-09-30" {
		t.Fatalf("end date: %v", event.SubscriptionEndDate)
	}
	want := time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC)
	if event.NextChargeDate == nil || !event.NextChargeDate.Equal(want) {
		t.Fatalf("next charge date: %v", event.NextChargeDate)
	}
}

func TestClassifyGarbageMetadata(t *testing.T) {
	event := Classify(map[string]string{
		"sequence": "not-a-number",
		"periods":  "",
		"amount":   "free",
	})
	if event.Sequence != 0 || event.Periods != 0 || event.AmountCents != 0 {
		t.Fatalf("garbage metadata must default to zero: %+v", event)
	}
}

func TestParseBodyForm(t *testing.T) {
	params, err := ParseBody("application/x-www-form-urlencoded", []byte("email=a%40b.com&reference=ORD1"))
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	if params["email"] != "a@b.com" || params["reference"] != "ORD1" {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestParseBodyJSON(t *testing.T) {
	body := []byte(`{"email":"a@b.com","quantity":1,"test":true}`)
	params, err := ParseBody("application/json", body)
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if params["email"] != "a@b.com" || params["quantity"] != "1" || params["test"] != "true" {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestParseBodyRejectsInvalidJSON(t *testing.T) {
	if _, err := ParseBody("application/json", []byte("{")); err == nil {
		t.Fatal("invalid json must error")
	}
}
