// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package product

import (
	"encoding/json"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/role"
)

// reserved metadata keys
const (
	KeyQualityScore        = "qualityScore"
	KeyQualityScoreHistory = "qualityScoreHistory"
	KeyCertifications      = "certifications"
	KeyLocation            = "location"
	KeyProductionDate      = "productionDate"
	KeyExpiryDate          = "expiryDate"
)

// limits of a quality score
const (
	MinimumScore = 0.0
	MaximumScore = 100.0
)

// accepted date layouts for production and expiry dates
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// Metadata - open mapping with a small set of typed reserved keys
//
// unknown keys are passed through unchanged
type Metadata map[string]interface{}

// QualityEntry - one element of the quality score history
type QualityEntry struct {
	Score         float64   `json:"score"`
	Role          role.Role `json:"role"`
	ParticipantId string    `json:"participantId"`
	Timestamp     int64     `json:"timestamp"`
}

// ValidScore - true if the score lies in [0, 100]
func ValidScore(score float64) bool {
	return !math.IsNaN(score) && score >= MinimumScore && score <= MaximumScore
}

// QualityScore - the current average, false if none
func (m Metadata) QualityScore() (float64, bool) {
	if nil == m {
		return 0, false
	}
	v, ok := m[KeyQualityScore]
	if !ok || nil == v {
		return 0, false
	}
	return toFloat(v)
}

// SetQualityScore - store a new average
func (m Metadata) SetQualityScore(score float64) {
	m[KeyQualityScore] = score
}

// History - decode the quality score history
func (m Metadata) History() ([]QualityEntry, error) {
	if nil == m {
		return nil, nil
	}
	v, ok := m[KeyQualityScoreHistory]
	if !ok || nil == v {
		return nil, nil
	}
	if h, ok := v.([]QualityEntry); ok {
		return h, nil
	}

	// after a round trip through JSON the history is a generic list
	buffer, err := json.Marshal(v)
	if nil != err {
		return nil, errors.Wrap(fault.ErrInvalidMetadata, KeyQualityScoreHistory)
	}
	history := []QualityEntry{}
	if err := json.Unmarshal(buffer, &history); nil != err {
		return nil, errors.Wrap(fault.ErrInvalidMetadata, KeyQualityScoreHistory)
	}
	return history, nil
}

// AppendHistory - add an entry to the end of the history
func (m Metadata) AppendHistory(entry QualityEntry) error {
	history, err := m.History()
	if nil != err {
		return err
	}
	m[KeyQualityScoreHistory] = append(history, entry)
	return nil
}

// Clone - copy of the top level map
func (m Metadata) Clone() Metadata {
	c := make(Metadata, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Validate - strict checking of reserved keys
func (m Metadata) Validate() error {
	if nil == m {
		return nil
	}

	if v, ok := m[KeyQualityScore]; ok && nil != v {
		score, ok := toFloat(v)
		if !ok {
			return errors.Wrap(fault.ErrInvalidMetadata, KeyQualityScore)
		}
		if !ValidScore(score) {
			return fault.ErrInvalidScore
		}
	}

	history, err := m.History()
	if nil != err {
		return err
	}
	for _, h := range history {
		if !ValidScore(h.Score) {
			return fault.ErrInvalidScore
		}
	}

	if v, ok := m[KeyCertifications]; ok && nil != v {
		if !isStringList(v) {
			return errors.Wrap(fault.ErrInvalidMetadata, KeyCertifications)
		}
	}

	if v, ok := m[KeyLocation]; ok && nil != v {
		if _, ok := v.(string); !ok {
			return errors.Wrap(fault.ErrInvalidMetadata, KeyLocation)
		}
	}

	production, hasProduction, err := m.date(KeyProductionDate)
	if nil != err {
		return err
	}
	expiry, hasExpiry, err := m.date(KeyExpiryDate)
	if nil != err {
		return err
	}
	if hasProduction && hasExpiry && expiry.Before(production) {
		return errors.Wrap(fault.ErrInvalidDate, "expiry before production")
	}

	return nil
}

func (m Metadata) date(key string) (time.Time, bool, error) {
	v, ok := m[key]
	if !ok || nil == v {
		return time.Time{}, false, nil
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false, errors.Wrap(fault.ErrInvalidDate, key)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); nil == err {
			return t, true, nil
		}
	}
	return time.Time{}, false, errors.Wrap(fault.ErrInvalidDate, key)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, nil == err
	}
	return 0, false
}

func isStringList(v interface{}) bool {
	switch list := v.(type) {
	case []string:
		return true
	case []interface{}:
		for _, item := range list {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}
