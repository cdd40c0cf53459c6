package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"identity-reconciler/core/reconcile"
)

// FlexString accepts a JSON string, a JSON number or null. Numbers decode to
// their shortest decimal form, so 123456, 123456.0, 1.23456e5 and "123456" all
// decode to the same value.
type FlexString struct {
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		f.Value = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.Value = &s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	s, err := numberText(n)
	if err != nil {
		return err
	}
	f.Value = &s
	return nil
}

// numberText renders n the way it would print as a plain number. Integer
// literals are kept digit for digit; anything else goes through float64.
func numberText(n json.Number) (string, error) {
	lit := n.String()
	if _, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return lit, nil
	}
	if isDigits(strings.TrimPrefix(lit, "-")) {
		return lit, nil
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return "", fmt.Errorf("number %s out of range", lit)
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (f FlexString) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// IdentifyRequest is the body of POST /identify.
type IdentifyRequest struct {
	Email       FlexString `json:"email" swaggertype:"string" example:"mcfly@hillvalley.edu"`
	PhoneNumber FlexString `json:"phoneNumber" swaggertype:"string" example:"123456"`
}

// IdentifyResponse wraps the consolidated contact.
type IdentifyResponse struct {
	Contact *reconcile.IdentityView `json:"contact"`
}
