package models

import "time"

// Setting keys of the configuration surface.
const (
	SettingAIBaseURL           = "ai/api_base_url"
	SettingAIAPIKey            = "ai/api_key"
	SettingDefaultMappingRules = "mapping/default_rules"
)

type Setting struct {
	Path      string    `json:"path" gorm:"primaryKey;size:255"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
