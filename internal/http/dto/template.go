package dto

type TemplatePreviewRequest struct {
	Template string `json:"template" binding:"required"`
}

type TemplatePreviewResponse struct {
	Rendered   string   `json:"rendered"`
	Unresolved []string `json:"unresolved"`
}
