// Package inventory holds the property book dataset: equipment on hand
// receipt, sensitive items and the activity log.
package inventory

import (
	"time"
)

// Readiness codes.
const (
	FMC = "FMC"
	PMC = "PMC"
	NMC = "NMC"
)

// Statuses lists readiness codes in display order.
var Statuses = []string{FMC, PMC, NMC}

// Equipment is one line of the property book.
type Equipment struct {
	ID                string    `yaml:"id"`
	NSN               string    `yaml:"nsn"`
	LIN               string    `yaml:"lin"`
	Serial            string    `yaml:"serial"`
	Nomenclature      string    `yaml:"nomenclature"`
	Status            string    `yaml:"status"`
	Location          string    `yaml:"location"`
	Holder            string    `yaml:"holder"`
	Quantity          int       `yaml:"quantity"`
	UnitPrice         float64   `yaml:"unitPrice"`
	Sensitive         bool      `yaml:"sensitive"`
	LastInventoryDate time.Time `yaml:"lastInventoryDate"`
	NextServiceDate   time.Time `yaml:"nextServiceDate"`
}

func (e Equipment) Field(name string) (any, bool) {
	switch name {
	case "id":
		return e.ID, true
	case "nsn":
		return e.NSN, true
	case "lin":
		return e.LIN, true
	case "serial":
		return e.Serial, true
	case "nomenclature":
		return e.Nomenclature, true
	case "status":
		return e.Status, true
	case "location":
		return e.Location, true
	case "holder":
		return e.Holder, true
	case "quantity":
		return e.Quantity, true
	case "unitPrice":
		return e.UnitPrice, true
	case "value":
		return e.Value(), true
	case "sensitive":
		return e.Sensitive, true
	case "lastInventoryDate":
		return optionalTime(e.LastInventoryDate), true
	case "nextServiceDate":
		return optionalTime(e.NextServiceDate), true
	}
	return nil, false
}

// Value is quantity times unit price.
func (e Equipment) Value() float64 { return float64(e.Quantity) * e.UnitPrice }

// SensitiveItem is a weapon, optic or COMSEC item on the sensitive items
// inventory.
type SensitiveItem struct {
	ID               string    `yaml:"id"`
	Serial           string    `yaml:"serial"`
	Nomenclature     string    `yaml:"nomenclature"`
	Category         string    `yaml:"category"`
	Custodian        string    `yaml:"custodian"`
	Vault            string    `yaml:"vault"`
	Status           string    `yaml:"status"`
	LastVerifiedDate time.Time `yaml:"lastVerifiedDate"`
	Verified         bool      `yaml:"verified"`
}

func (s SensitiveItem) Field(name string) (any, bool) {
	switch name {
	case "id":
		return s.ID, true
	case "serial":
		return s.Serial, true
	case "nomenclature":
		return s.Nomenclature, true
	case "category":
		return s.Category, true
	case "custodian":
		return s.Custodian, true
	case "vault":
		return s.Vault, true
	case "status":
		return s.Status, true
	case "lastVerifiedDate":
		return optionalTime(s.LastVerifiedDate), true
	case "verified":
		return s.Verified, true
	}
	return nil, false
}

// Activity is an entry of the audit log.
type Activity struct {
	ID        string    `yaml:"id" json:"id"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Actor     string    `yaml:"actor" json:"actor"`
	Action    string    `yaml:"action" json:"action"`
	Subject   string    `yaml:"subject" json:"subject"`
	Details   string    `yaml:"details,omitempty" json:"details,omitempty"`
}

func (a Activity) Field(name string) (any, bool) {
	switch name {
	case "id":
		return a.ID, true
	case "timestamp", "date":
		return optionalTime(a.Timestamp), true
	case "actor":
		return a.Actor, true
	case "action":
		return a.Action, true
	case "subject":
		return a.Subject, true
	case "details":
		if a.Details == "" {
			return nil, true
		}
		return a.Details, true
	}
	return nil, false
}

// Dataset is everything the dashboard shows.
type Dataset struct {
	Equipment      []Equipment     `yaml:"equipment"`
	SensitiveItems []SensitiveItem `yaml:"sensitiveItems"`
	Activity       []Activity      `yaml:"activity"`
}

// optionalTime turns the zero time into nil so it renders as an empty cell
// and compares equal to everything when sorting.
func optionalTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
