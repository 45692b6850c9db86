package chi

import (
	"time"

	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	domrisk "github.com/kailas-cloud/heritage/internal/domain/risk"
)

type errorCode string

const (
	codeBadRequest             errorCode = "bad_request"
	codeUnauthorized           errorCode = "unauthorized"
	codeValidationFailed       errorCode = "validation_failed"
	codeNotFound               errorCode = "not_found"
	codeDependencyFailure      errorCode = "dependency_failure"
	codeDependencyTimeout      errorCode = "dependency_timeout"
	codeEmbeddingProviderError errorCode = "embedding_provider_error"
	codeDimensionMismatch      errorCode = "dimension_mismatch"
	codeInternalError          errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type welcomeResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type scoreRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type referenceResponse struct {
	Score          float64 `json:"score"`
	SourcesMatched int     `json:"sources_matched"`
}

type componentsResponse struct {
	Length   float64           `json:"length"`
	Language float64           `json:"language"`
	Digital  referenceResponse `json:"digital"`
	Local    float64           `json:"local"`
}

type riskResponse struct {
	Score      float64            `json:"score"`
	Level      domrisk.Level      `json:"level"`
	Components componentsResponse `json:"components"`
}

type itemRequest struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	Tags        []string `json:"tags"`
	Language    string   `json:"language"`
	TimePeriod  string   `json:"time_period"`
	UserID      string   `json:"user_id"`
	UserName    string   `json:"user_name"`
}

// itemResponse never carries the stored embedding.
type itemResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Category    string        `json:"category,omitempty"`
	Description string        `json:"description"`
	Region      string        `json:"region,omitempty"`
	Tags        []string      `json:"tags"`
	Language    string        `json:"language,omitempty"`
	TimePeriod  string        `json:"time_period,omitempty"`
	UserID      string        `json:"user_id,omitempty"`
	UserName    string        `json:"user_name,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Risk        *riskResponse `json:"risk,omitempty"`
}

type itemListResponse struct {
	Items []itemResponse `json:"items"`
	Count int            `json:"count"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func riskToResponse(r domrisk.Result) riskResponse {
	c := r.Components()
	return riskResponse{
		Score: r.Score(),
		Level: r.Level(),
		Components: componentsResponse{
			Length:   c.Length,
			Language: c.Language,
			Digital: referenceResponse{
				Score:          c.Digital.Score,
				SourcesMatched: c.Digital.SourcesMatched,
			},
			Local: c.Local,
		},
	}
}

func (req itemRequest) toDraft() domitem.Draft {
	return domitem.Draft{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Region:      req.Region,
		Tags:        req.Tags,
		Language:    req.Language,
		TimePeriod:  req.TimePeriod,
		UserID:      req.UserID,
		UserName:    req.UserName,
	}
}

func itemToResponse(it *domitem.Item) itemResponse {
	d := it.Draft()
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	resp := itemResponse{
		ID:          it.ID(),
		Title:       d.Title,
		Category:    d.Category,
		Description: d.Description,
		Region:      d.Region,
		Tags:        tags,
		Language:    d.Language,
		TimePeriod:  d.TimePeriod,
		UserID:      d.UserID,
		UserName:    d.UserName,
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
	if r := it.Risk(); !r.IsZero() {
		rr := riskToResponse(r)
		resp.Risk = &rr
	}
	return resp
}
