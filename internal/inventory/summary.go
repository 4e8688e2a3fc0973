package inventory

import "time"

// Summary is the set of dashboard metrics.
type Summary struct {
	TotalItems     int
	ByStatus       map[string]int
	Readiness      float64
	TotalValue     float64
	Sensitive      int
	Verified       int
	VerifiedRate   float64
	ServiceDueSoon int
	LastActivity   time.Time
}

// ServiceWindow is how far ahead a service date counts as due soon.
const ServiceWindow = 30 * 24 * time.Hour

// Summary computes metrics as of now. Readiness is the share of FMC equipment
// lines; rates are zero for empty inputs.
func (d Dataset) Summary(now time.Time) Summary {
	s := Summary{ByStatus: make(map[string]int, len(Statuses))}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, e := range d.Equipment {
		s.TotalItems += e.Quantity
		s.ByStatus[e.Status]++
		s.TotalValue += e.Value()
		if !e.NextServiceDate.IsZero() && !e.NextServiceDate.After(now.Add(ServiceWindow)) {
			s.ServiceDueSoon++
		}
	}
	if n := len(d.Equipment); n > 0 {
		s.Readiness = float64(s.ByStatus[FMC]) / float64(n)
	}
	for _, it := range d.SensitiveItems {
		s.Sensitive++
		if it.Verified {
			s.Verified++
		}
	}
	if s.Sensitive > 0 {
		s.VerifiedRate = float64(s.Verified) / float64(s.Sensitive)
	}
	for _, a := range d.Activity {
		if a.Timestamp.After(s.LastActivity) {
			s.LastActivity = a.Timestamp
		}
	}
	return s
}
