package structs

type RatingRequest struct {
	Token string `json:"token" binding:"required"`
}

type SummaryRequest struct {
	ClientIDs []string `json:"clientIds" binding:"required"`
}

// ClientSummary is one entry of the summary response map.
type ClientSummary struct {
	Given    int64   `json:"given"`
	Received int64   `json:"received"`
	Avg      float64 `json:"avg"`
}
