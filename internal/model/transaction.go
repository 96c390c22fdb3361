package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the direction of a transaction.
type Kind string

// Transaction kinds.
const (
	KindCheckIn  Kind = "CHECK_IN"
	KindCheckOut Kind = "CHECK_OUT"
)

// Kinds lists the transaction kinds in display order.
var Kinds = []Kind{KindCheckIn, KindCheckOut}

// ParseKind returns the kind named by s, or false if s names none.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindCheckIn:
		return KindCheckIn, true
	case KindCheckOut:
		return KindCheckOut, true
	}
	return "", false
}

// Label returns the kind with underscores replaced for display.
func (k Kind) Label() string {
	return strings.ReplaceAll(string(k), "_", " ")
}

// Amount is a leniently decoded number. Numbers and numeric strings decode
// as valid; null, missing and anything else decode as invalid without
// failing the surrounding document.
type Amount struct {
	Value float64
	Valid bool
}

// NewAmount returns a valid amount.
func NewAmount(v float64) Amount {
	return Amount{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = Amount{Value: f, Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*a = Amount{Value: f, Valid: true}
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

// Contribution is the amount a transaction adds to a quantity total.
// Invalid, negative and non-finite amounts contribute nothing.
func (a Amount) Contribution() float64 {
	if !a.Valid || a.Value < 0 || math.IsNaN(a.Value) || math.IsInf(a.Value, 0) {
		return 0
	}
	return a.Value
}

// TransactionRecord is the kind-agnostic view of a supply or equipment
// transaction that the dashboard aggregates.
type TransactionRecord struct {
	ID        string
	Timestamp string
	Kind      Kind
	SubjectID string
	Quantity  Amount
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the date-time formats the backend emits. Values
// without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SupplyTransaction is a check-in or check-out of a supply. List and detail
// endpoints name some fields differently; both spellings are kept.
type SupplyTransaction struct {
	ID              int64  `json:"supplyTransactionId"`
	Type            Kind   `json:"supplyTransactionType,omitempty"`
	TransactionType Kind   `json:"transactionType,omitempty"`
	Quantity        Amount `json:"quantity"`
	Note            string `json:"note,omitempty"`
	Timestamp       string `json:"timestamp,omitempty"`
	TransactionDate string `json:"transactionDate,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	SupplyID        int64  `json:"supplyId,omitempty"`
	SupplyName      string `json:"supplyName,omitempty"`
	UserName        string `json:"userName,omitempty"`

	Supply *Supply `json:"supply,omitempty"`
	User   *User   `json:"user,omitempty"`
}

// Kind returns the transaction direction.
func (t SupplyTransaction) Kind() Kind {
	return firstKind(t.Type, t.TransactionType)
}

// When returns the raw date-time of the transaction.
func (t SupplyTransaction) When() string {
	return firstNonEmpty(t.Timestamp, t.TransactionDate, t.CreatedAt)
}

// SubjectID returns the id of the supply involved.
func (t SupplyTransaction) SubjectID() int64 {
	if t.SupplyID != 0 || t.Supply == nil {
		return t.SupplyID
	}
	return t.Supply.ID
}

// Name returns the supply name.
func (t SupplyTransaction) Name() string {
	if t.SupplyName != "" || t.Supply == nil {
		return t.SupplyName
	}
	return t.Supply.Name
}

// Actor returns the name of the user who made the transaction.
func (t SupplyTransaction) Actor() string {
	if t.UserName != "" || t.User == nil {
		return t.UserName
	}
	return t.User.Name
}

// Record projects the transaction for aggregation.
func (t SupplyTransaction) Record() TransactionRecord {
	return TransactionRecord{
		ID:        strconv.FormatInt(t.ID, 10),
		Timestamp: t.When(),
		Kind:      t.Kind(),
		SubjectID: subjectKey(t.SubjectID()),
		Quantity:  t.Quantity,
	}
}

// EquipmentTransaction is a check-in or check-out of equipment.
type EquipmentTransaction struct {
	ID              int64  `json:"equipmentTransactionId"`
	Type            Kind   `json:"equipmentTransactionType,omitempty"`
	TransactionType Kind   `json:"transactionType,omitempty"`
	HoursLogged     Amount `json:"hoursLogged"`
	HoursUsed       Amount `json:"hoursUsed"`
	TotalHoursInput Amount `json:"totalHoursInput"`
	Note            string `json:"note,omitempty"`
	Description     string `json:"description,omitempty"`
	Timestamp       string `json:"timestamp,omitempty"`
	TransactionDate string `json:"transactionDate,omitempty"`
	EquipmentID     int64  `json:"equipmentId,omitempty"`
	EquipmentName   string `json:"equipmentName,omitempty"`
	UserName        string `json:"userName,omitempty"`

	Equipment *Equipment `json:"equipment,omitempty"`
	User      *User      `json:"user,omitempty"`
}

// Kind returns the transaction direction.
func (t EquipmentTransaction) Kind() Kind {
	return firstKind(t.Type, t.TransactionType)
}

// When returns the raw date-time of the transaction.
func (t EquipmentTransaction) When() string {
	return firstNonEmpty(t.Timestamp, t.TransactionDate)
}

// Hours returns the logged hours, falling back to the list view's field.
func (t EquipmentTransaction) Hours() Amount {
	if t.HoursLogged.Valid {
		return t.HoursLogged
	}
	return t.HoursUsed
}

// SubjectID returns the id of the equipment involved.
func (t EquipmentTransaction) SubjectID() int64 {
	if t.EquipmentID != 0 || t.Equipment == nil {
		return t.EquipmentID
	}
	return t.Equipment.ID
}

// Name returns the equipment name.
func (t EquipmentTransaction) Name() string {
	if t.EquipmentName != "" || t.Equipment == nil {
		return t.EquipmentName
	}
	return t.Equipment.Name
}

// Actor returns the name of the user who made the transaction.
func (t EquipmentTransaction) Actor() string {
	if t.UserName != "" || t.User == nil {
		return t.UserName
	}
	return t.User.Name
}

// Record projects the transaction for aggregation.
func (t EquipmentTransaction) Record() TransactionRecord {
	return TransactionRecord{
		ID:        strconv.FormatInt(t.ID, 10),
		Timestamp: t.When(),
		Kind:      t.Kind(),
		SubjectID: subjectKey(t.SubjectID()),
		Quantity:  t.Hours(),
	}
}

// SupplyRecords projects a list of supply transactions.
func SupplyRecords(txs []SupplyTransaction) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.Record())
	}
	return out
}

// EquipmentRecords projects a list of equipment transactions.
func EquipmentRecords(txs []EquipmentTransaction) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.Record())
	}
	return out
}

func subjectKey(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func firstKind(kinds ...Kind) Kind {
	for _, k := range kinds {
		if k != "" {
			return k
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
