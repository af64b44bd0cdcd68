package dto

// ── 配置模块 DTO ──

// UpdateSettingRequest 修改单个配置项（PATCH /settings/field）
type UpdateSettingRequest struct {
	SettingKey    string `json:"settingKey"    binding:"required,max=64"`
	Value         string `json:"value"`
	EffectiveFrom string `json:"effectiveFrom" binding:"required"`
}

// SettingResponse 当前配置项
type SettingResponse struct {
	Key           string `json:"key"`
	Value         string `json:"value"`
	Kind          string `json:"kind"`
	Unit          string `json:"unit"`
	Description   string `json:"description"`
	EffectiveFrom string `json:"effective_from,omitempty"` // 为空表示使用默认值
	IsDefault     bool   `json:"is_default"`
}

// SettingVersionResponse 配置版本
type SettingVersionResponse struct {
	ID            string  `json:"id"`
	Key           string  `json:"key"`
	Value         string  `json:"value"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to"`
	CreatedBy     *string `json:"created_by,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// UpdateSettingResponse 配置写入结果
type UpdateSettingResponse struct {
	Version        SettingVersionResponse `json:"version"`
	GuestsRepriced int64                  `json:"guests_repriced"`
}

// RepriceResponse 访客餐重算结果
type RepriceResponse struct {
	Price         string  `json:"price"`
	EffectiveFrom string  `json:"effective_from,omitempty"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
	Affected      int64   `json:"affected"`
}
