package domain

type Category struct {
	ID     string `json:"id"`
	Slug   string `json:"slug,omitempty"`
	NameJa string `json:"nameJa"`
	NameVi string `json:"nameVi"`
}
