package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentMethod represents how a payment was made
type PaymentMethod int

const (
	PaymentMethodCash  PaymentMethod = 0
	PaymentMethodCheck PaymentMethod = 1
	PaymentMethodCard  PaymentMethod = 2
	PaymentMethodOther PaymentMethod = 3
)

func (m PaymentMethod) String() string {
	names := [...]string{"Cash", "Check", "Card", "Other"}
	if int(m) < 0 || int(m) >= len(names) {
		return "Other"
	}
	return names[m]
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PaymentMethod(i)
		return nil
	}
	switch str {
	case "Cash", "cash":
		*m = PaymentMethodCash
	case "Check", "check":
		*m = PaymentMethodCheck
	case "Card", "card":
		*m = PaymentMethodCard
	default:
		*m = PaymentMethodOther
	}
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	}
	return nil
}
