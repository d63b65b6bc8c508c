package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// EstimateStatus represents the status of an estimate
type EstimateStatus int

const (
	EstimateStatusPending  EstimateStatus = 0
	EstimateStatusSent     EstimateStatus = 1
	EstimateStatusAccepted EstimateStatus = 2
	EstimateStatusCanceled EstimateStatus = 3
)

func (s EstimateStatus) String() string {
	names := [...]string{"Pending", "Sent", "Accepted", "Canceled"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Pending"
	}
	return names[s]
}

func (s EstimateStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *EstimateStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = EstimateStatus(i)
		return nil
	}
	switch str {
	case "Pending":
		*s = EstimateStatusPending
	case "Sent":
		*s = EstimateStatusSent
	case "Accepted":
		*s = EstimateStatusAccepted
	case "Canceled":
		*s = EstimateStatusCanceled
	}
	return nil
}

func (s EstimateStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *EstimateStatus) Scan(value interface{}) error {
	if value == nil {
		*s = EstimateStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = EstimateStatus(v)
	case int:
		*s = EstimateStatus(v)
	}
	return nil
}
