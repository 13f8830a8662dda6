// internal/workers/welfare/discover-schemes/models.go
package discoverschemes

import "scheme-finder/internal/models"

type Mode string

const (
	ModeProfile Mode = "profile"
	ModePopular Mode = "popular"
)

type Input struct {
	Profile    *models.Profile `json:"profile,omitempty"`
	Popular    bool            `json:"popular"`
	MaxResults int             `json:"maxResults"`
	UserID     string          `json:"userId,omitempty"`
}

type Output struct {
	Schemes []models.Scheme `json:"schemes"`
	Mode    Mode            `json:"mode"`
	Count   int             `json:"count"`
}
