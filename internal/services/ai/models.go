package ai

// GenerateRequest is the structured prompt sent to the generation endpoint.
type GenerateRequest struct {
	ProductName            string `json:"product_name" binding:"required"`
	PrimaryKeywords        string `json:"primary_keywords,omitempty"`
	SecondaryKeywords      string `json:"secondary_keywords,omitempty"`
	Category               string `json:"category,omitempty"`
	TargetAudience         string `json:"target_audience,omitempty"`
	Tone                   string `json:"tone,omitempty"`
	Language               string `json:"language,omitempty"`
	AdditionalInstructions string `json:"additional_instructions,omitempty"`
	ItemIndex              int    `json:"item_index,omitempty"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type APIKeyResponse struct {
	APIKey string `json:"api_key"`
	Name   string `json:"name,omitempty"`
}

// UsageStats is the quota summary shown on the dashboard.
type UsageStats struct {
	Plan              string  `json:"plan"`
	RequestsUsed      int     `json:"requests_used"`
	RequestsLimit     int     `json:"requests_limit"`
	RequestsRemaining int     `json:"requests_remaining"`
	TokensUsed        int     `json:"tokens_used"`
	PeriodStart       string  `json:"period_start,omitempty"`
	PeriodEnd         string  `json:"period_end,omitempty"`
	UsagePercent      float64 `json:"usage_percent"`
}

type AccountInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Plan      string `json:"plan"`
	CreatedAt string `json:"created_at,omitempty"`
}

type HistoryEntry struct {
	ID          string `json:"id"`
	Endpoint    string `json:"endpoint"`
	ProductName string `json:"product_name,omitempty"`
	Status      string `json:"status"`
	TokensUsed  int    `json:"tokens_used"`
	CreatedAt   string `json:"created_at"`
}

type HistoryPage struct {
	Items []HistoryEntry `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
