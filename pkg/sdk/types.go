package heritage

import (
	"time"

	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	domrisk "github.com/kailas-cloud/heritage/internal/domain/risk"
)

// Level is a risk band.
type Level string

// Level constants.
const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelCritical Level = "Critical"
)

// Components are the four raw sub-scores behind a risk score.
type Components struct {
	Length         float64
	Language       float64
	Digital        float64
	SourcesMatched int
	Local          float64
}

// Risk is a finished assessment.
type Risk struct {
	Score      float64
	Level      Level
	Components Components
}

// Weights overrides the component weights. They must sum to 1.0.
type Weights struct {
	Length   float64
	Language float64
	Digital  float64
	Local    float64
}

// ItemInput holds the user-supplied fields of a cultural item.
// Description is the scored text.
type ItemInput struct {
	Title       string
	Category    string
	Description string
	Region      string
	Tags        []string
	Language    string
	TimePeriod  string
	UserID      string
	UserName    string
}

// Item is a stored cultural item. Risk is nil until the item has been assessed.
type Item struct {
	ID          string
	Title       string
	Category    string
	Description string
	Region      string
	Tags        []string
	Language    string
	TimePeriod  string
	UserID      string
	UserName    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Risk        *Risk
}

// ListOptions filters a listing. Zero Limit uses the service default.
type ListOptions struct {
	Category string
	Limit    int
}

func riskFromDomain(r domrisk.Result) Risk {
	c := r.Components()
	return Risk{
		Score: r.Score(),
		Level: Level(r.Level()),
		Components: Components{
			Length:         c.Length,
			Language:       c.Language,
			Digital:        c.Digital.Score,
			SourcesMatched: c.Digital.SourcesMatched,
			Local:          c.Local,
		},
	}
}

func (in ItemInput) toDraft() domitem.Draft {
	return domitem.Draft{
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Region:      in.Region,
		Tags:        in.Tags,
		Language:    in.Language,
		TimePeriod:  in.TimePeriod,
		UserID:      in.UserID,
		UserName:    in.UserName,
	}
}

func itemFromDomain(it *domitem.Item) Item {
	d := it.Draft()
	out := Item{
		ID:          it.ID(),
		Title:       d.Title,
		Category:    d.Category,
		Description: d.Description,
		Region:      d.Region,
		Tags:        d.Tags,
		Language:    d.Language,
		TimePeriod:  d.TimePeriod,
		UserID:      d.UserID,
		UserName:    d.UserName,
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
	if r := it.Risk(); !r.IsZero() {
		rr := riskFromDomain(r)
		out.Risk = &rr
	}
	return out
}
