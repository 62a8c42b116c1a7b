package domain

import "time"

// ManageablePage is one Facebook Page the operator administers, as returned
// by the Graph API accounts listing. The page-scoped access token has a
// lifetime independent of the user token that produced it. Instances are
// transient: nothing is persisted until the operator selects a page.
type ManageablePage struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AccessToken string   `json:"accessToken"`
	Category    string   `json:"category"`
	Tasks       []string `json:"tasks"`
}

// PageToken is the durable record of a connected Facebook Page.
// AccessTokenEnc holds the cryptox envelope; the plaintext page token must
// never reach the store.
type PageToken struct {
	ID             string
	PageID         string
	PageName       string
	AccessTokenEnc string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
