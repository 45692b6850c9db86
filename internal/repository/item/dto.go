package item

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	"github.com/kailas-cloud/heritage/internal/domain/risk"
)

// Hash field names. Internal fields carry a "__" prefix.
const (
	fieldTitle        = "title"
	fieldCategory     = "category"
	fieldDescription  = "description"
	fieldRegion       = "region"
	fieldTags         = "tags"
	fieldLanguage     = "language"
	fieldTimePeriod   = "time_period"
	fieldUserID       = "user_id"
	fieldUserName     = "user_name"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"
	fieldRiskScore    = "risk_score"
	fieldRiskLevel    = "risk_level"
	fieldRiskLength   = "risk_length"
	fieldRiskLanguage = "risk_language"
	fieldRiskDigital  = "risk_digital"
	fieldRiskSources  = "risk_sources"
	fieldRiskLocal    = "risk_local"
	fieldVector       = "__vector"
)

// buildHashFields converts a domain Item into a flat map[string]string for HSET.
// Every field is written so that an update overwrites stale values.
func buildHashFields(it *domitem.Item) (map[string]string, error) {
	d := it.Draft()
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	r := it.Risk()
	c := r.Components()
	return map[string]string{
		fieldTitle:        d.Title,
		fieldCategory:     d.Category,
		fieldDescription:  d.Description,
		fieldRegion:       d.Region,
		fieldTags:         string(tagsJSON),
		fieldLanguage:     d.Language,
		fieldTimePeriod:   d.TimePeriod,
		fieldUserID:       d.UserID,
		fieldUserName:     d.UserName,
		fieldCreatedAt:    it.CreatedAt().Format(time.RFC3339Nano),
		fieldUpdatedAt:    it.UpdatedAt().Format(time.RFC3339Nano),
		fieldRiskScore:    formatFloat(r.Score()),
		fieldRiskLevel:    string(r.Level()),
		fieldRiskLength:   formatFloat(c.Length),
		fieldRiskLanguage: formatFloat(c.Language),
		fieldRiskDigital:  formatFloat(c.Digital.Score),
		fieldRiskSources:  strconv.Itoa(c.Digital.SourcesMatched),
		fieldRiskLocal:    formatFloat(c.Local),
		fieldVector:       vectorToBytes(it.Embedding()),
	}, nil
}

// parseHashFields converts a flat hash map back into a domain Item.
func parseHashFields(id string, m map[string]string) (domitem.Item, error) {
	d := domitem.Draft{
		Title:       m[fieldTitle],
		Category:    m[fieldCategory],
		Description: m[fieldDescription],
		Region:      m[fieldRegion],
		Language:    m[fieldLanguage],
		TimePeriod:  m[fieldTimePeriod],
		UserID:      m[fieldUserID],
		UserName:    m[fieldUserName],
	}
	if raw := m[fieldTags]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &d.Tags); err != nil {
			return domitem.Item{}, fmt.Errorf("item %s: parse tags: %w", id, err)
		}
	}

	createdAt, err := parseTime(m[fieldCreatedAt])
	if err != nil {
		return domitem.Item{}, fmt.Errorf("item %s: parse created_at: %w", id, err)
	}
	updatedAt, err := parseTime(m[fieldUpdatedAt])
	if err != nil {
		return domitem.Item{}, fmt.Errorf("item %s: parse updated_at: %w", id, err)
	}

	var result risk.Result
	if level := risk.Level(m[fieldRiskLevel]); level.IsValid() {
		sources, _ := strconv.Atoi(m[fieldRiskSources])
		result = risk.NewResult(parseFloat(m[fieldRiskScore]), level, risk.Components{
			Length:   parseFloat(m[fieldRiskLength]),
			Language: parseFloat(m[fieldRiskLanguage]),
			Digital: risk.Reference{
				Score:          parseFloat(m[fieldRiskDigital]),
				SourcesMatched: sources,
			},
			Local: parseFloat(m[fieldRiskLocal]),
		})
	}

	return domitem.Reconstruct(id, d, createdAt, updatedAt, result, bytesToVector(m[fieldVector])), nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
