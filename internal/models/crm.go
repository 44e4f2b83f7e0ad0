// internal/models/crm.go
package models

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Contact struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// CRMRecord holds relationship metadata for one tracked company.
type CRMRecord struct {
	RelationshipStrength int       `json:"relationship_strength"`
	KeyContacts          []Contact `json:"key_contacts"`
}

// TopContact returns the highest priority contact, which is the first one listed.
func (r CRMRecord) TopContact() (Contact, bool) {
	if len(r.KeyContacts) == 0 {
		return Contact{}, false
	}
	return r.KeyContacts[0], true
}

type crmEntry struct {
	Company string
	Record  CRMRecord
}

// CRMBook is the read-only CRM snapshot. Company keys are case-insensitive and
// iteration follows insertion order. A nil *CRMBook behaves as an empty book
// and the zero value is ready to use.
type CRMBook struct {
	entries *orderedmap.OrderedMap[string, crmEntry]
}

func NewCRMBook() *CRMBook {
	return &CRMBook{entries: orderedmap.New[string, crmEntry]()}
}

// Add inserts or replaces a company. A replaced company keeps its original position.
func (b *CRMBook) Add(company string, record CRMRecord) {
	company = strings.TrimSpace(company)
	if company == "" {
		return
	}
	if b.entries == nil {
		b.entries = orderedmap.New[string, crmEntry]()
	}
	b.entries.Set(strings.ToLower(company), crmEntry{Company: company, Record: record})
}

// Get looks a company up case-insensitively.
func (b *CRMBook) Get(company string) (CRMRecord, bool) {
	if b == nil || b.entries == nil {
		return CRMRecord{}, false
	}
	e, ok := b.entries.Get(strings.ToLower(strings.TrimSpace(company)))
	return e.Record, ok
}

func (b *CRMBook) Len() int {
	if b == nil || b.entries == nil {
		return 0
	}
	return b.entries.Len()
}

// Each visits companies in insertion order until fn returns false.
func (b *CRMBook) Each(fn func(company string, record CRMRecord) bool) {
	if b == nil || b.entries == nil {
		return
	}
	for pair := b.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Value.Company, pair.Value.Record) {
			return
		}
	}
}

// UnmarshalJSON reads a {"Company": {...}} object keeping the document's key order.
func (b *CRMBook) UnmarshalJSON(data []byte) error {
	raw := orderedmap.New[string, CRMRecord]()
	if err := json.Unmarshal(data, raw); err != nil {
		return err
	}
	b.entries = orderedmap.New[string, crmEntry]()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		b.Add(pair.Key, pair.Value)
	}
	return nil
}
