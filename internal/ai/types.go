package ai

// Suggestion is the AI-suggested metadata for a new bookmark.
type Suggestion struct {
	Title           string   `json:"title"`
	Collection      string   `json:"collection"`
	IsNewCollection bool     `json:"isNewCollection"`
	Tags            []string `json:"tags"`
}

// OrganizeSuggestion is the AI-suggested placement of an existing bookmark.
type OrganizeSuggestion struct {
	Collection      string   `json:"collection"`
	IsNewCollection bool     `json:"isNewCollection"`
	Tags            []string `json:"tags"`
	Confidence      string   `json:"confidence"` // "high", "medium", "low"
}

// apiRequest represents the Anthropic API request body.
type apiRequest struct {
	Model        string        `json:"model"`
	MaxTokens    int           `json:"max_tokens"`
	Messages     []apiMessage  `json:"messages"`
	OutputFormat *outputFormat `json:"output_format,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type outputFormat struct {
	Type   string     `json:"type"`
	Schema jsonSchema `json:"schema"`
}

type jsonSchema struct {
	Type                 string                `json:"type"`
	Properties           map[string]schemaProp `json:"properties"`
	Required             []string              `json:"required"`
	AdditionalProperties bool                  `json:"additionalProperties"`
}

type schemaProp struct {
	Type  string      `json:"type"`
	Items *schemaProp `json:"items,omitempty"`
}

var (
	suggestionSchema = jsonSchema{
		Type: "object",
		Properties: map[string]schemaProp{
			"title":           {Type: "string"},
			"collection":      {Type: "string"},
			"isNewCollection": {Type: "boolean"},
			"tags":            {Type: "array", Items: &schemaProp{Type: "string"}},
		},
		Required: []string{"title", "collection", "isNewCollection", "tags"},
	}

	organizeSchema = jsonSchema{
		Type: "object",
		Properties: map[string]schemaProp{
			"collection":      {Type: "string"},
			"isNewCollection": {Type: "boolean"},
			"tags":            {Type: "array", Items: &schemaProp{Type: "string"}},
			"confidence":      {Type: "string"},
		},
		Required: []string{"collection", "isNewCollection", "tags", "confidence"},
	}
)

// apiResponse represents the Anthropic API response body.
type apiResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
