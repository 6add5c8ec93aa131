package steamgriddb

// apiResponse is the envelope every v2 endpoint returns
type apiResponse[T any] struct {
	Success bool     `json:"success"`
	Data    []T      `json:"data"`
	Errors  []string `json:"errors"`
}

// gameResult is one autocomplete search hit
type gameResult struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Types    []string `json:"types"`
	Verified bool     `json:"verified"`
}

// imageResult is one grid, hero or logo entry
type imageResult struct {
	ID     int    `json:"id"`
	Score  int    `json:"score"`
	Style  string `json:"style"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	NSFW   bool   `json:"nsfw"`
	Humor  bool   `json:"humor"`
	Mime   string `json:"mime"`
	URL    string `json:"url"`
	Thumb  string `json:"thumb"`
}
