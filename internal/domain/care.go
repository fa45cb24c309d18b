package domain

import (
	"strconv"
	"strings"
	"time"
)

// CareType classifies a care log entry
type CareType string

const (
	CareFeeding  CareType = "FEEDING"
	CareCleaning CareType = "CLEANING"
	CareShedding CareType = "SHEDDING"
	CareWeight   CareType = "WEIGHT"
	CareMating   CareType = "MATING"
	CareLaying   CareType = "LAYING"
	CareOther    CareType = "OTHER"
	CareWater    CareType = "WATER"
	CareHealth   CareType = "HEALTH"
)

// Valid reports whether t is a known care type.
func (t CareType) Valid() bool {
	switch t {
	case CareFeeding, CareCleaning, CareShedding, CareWeight, CareMating,
		CareLaying, CareOther, CareWater, CareHealth:
		return true
	}
	return false
}

// CareLog Model. Rows are never updated after insert.
type CareLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                              // Primary key
	GeckoID   uint      `gorm:"index:idx_care_gecko_type;not null" json:"geckoId"` // Owning gecko
	Type      CareType  `gorm:"size:16;index:idx_care_gecko_type;not null" json:"type"`
	Note      *string   `gorm:"type:text" json:"note"`
	Value     *string   `gorm:"size:100" json:"value"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"` // Caller may backdate
}

// Status is the derived care state of a cell
type Status string

const (
	StatusGood   Status = "good"
	StatusUrgent Status = "urgent"
	StatusEmpty  Status = "empty"
)

// DefaultCareThreshold is how long a care category may go without a log.
const DefaultCareThreshold = 72 * time.Hour

// LastCare maps a care type to the time of its most recent log.
type LastCare map[CareType]time.Time

// Overdue reports whether the category has no log or its latest log is older than
// threshold at now.
func (l LastCare) Overdue(t CareType, now time.Time, threshold time.Duration) bool {
	last, ok := l[t]
	return !ok || last.Before(now.Add(-threshold))
}

// DeriveStatus is urgent when feeding or cleaning is overdue, good otherwise.
func DeriveStatus(last LastCare, now time.Time, threshold time.Duration) Status {
	if last.Overdue(CareFeeding, now, threshold) || last.Overdue(CareCleaning, now, threshold) {
		return StatusUrgent
	}
	return StatusGood
}

// AlertPolicy selects which care categories raise alerts
type AlertPolicy struct {
	Name       string
	Categories []CareType
	Threshold  time.Duration
}

const (
	PolicyFeedingCleaning      = "feeding-cleaning"
	PolicyFeedingCleaningWater = "feeding-cleaning-water"
)

// NewAlertPolicy resolves a policy by name. Unknown names fall back to the
// feeding/cleaning policy.
func NewAlertPolicy(name string, threshold time.Duration) AlertPolicy {
	if threshold <= 0 {
		threshold = DefaultCareThreshold
	}
	if name == PolicyFeedingCleaningWater {
		return AlertPolicy{Name: name, Categories: []CareType{CareFeeding, CareCleaning, CareWater}, Threshold: threshold}
	}
	return AlertPolicy{Name: PolicyFeedingCleaning, Categories: []CareType{CareFeeding, CareCleaning}, Threshold: threshold}
}

// Tracks reports whether the policy watches t.
func (p AlertPolicy) Tracks(t CareType) bool {
	for _, c := range p.Categories {
		if c == t {
			return true
		}
	}
	return false
}

// Alert lists the overdue categories of one gecko
type Alert struct {
	Gecko         *Gecko     `json:"gecko"`
	NeedsFeeding  bool       `json:"needsFeeding"`
	NeedsCleaning bool       `json:"needsCleaning"`
	NeedsWater    bool       `json:"needsWater"`
	LastFeeding   *time.Time `json:"lastFeeding"`
	LastCleaning  *time.Time `json:"lastCleaning"`
	LastWater     *time.Time `json:"lastWater"`
}

// Evaluate builds the alert for a gecko. ok is false when nothing tracked is overdue.
func (p AlertPolicy) Evaluate(g *Gecko, last LastCare, now time.Time) (alert Alert, ok bool) {
	alert = Alert{
		Gecko:        g,
		LastFeeding:  last.at(CareFeeding),
		LastCleaning: last.at(CareCleaning),
		LastWater:    last.at(CareWater),
	}
	if p.Tracks(CareFeeding) {
		alert.NeedsFeeding = last.Overdue(CareFeeding, now, p.Threshold)
	}
	if p.Tracks(CareCleaning) {
		alert.NeedsCleaning = last.Overdue(CareCleaning, now, p.Threshold)
	}
	if p.Tracks(CareWater) {
		alert.NeedsWater = last.Overdue(CareWater, now, p.Threshold)
	}
	return alert, alert.NeedsFeeding || alert.NeedsCleaning || alert.NeedsWater
}

func (l LastCare) at(t CareType) *time.Time {
	if v, ok := l[t]; ok {
		return &v
	}
	return nil
}

// WeightPoint is one sample of a gecko's weight history
type WeightPoint struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

// ParseGrams reads weight values such as "42.5g", "42.5 g" or "42.5".
func ParseGrams(value string) (float64, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	v = strings.TrimSpace(strings.TrimSuffix(v, "g"))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
