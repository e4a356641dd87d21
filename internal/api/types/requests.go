package types

// DeployQuery is the query string of GET|POST /deploy.
type DeployQuery struct {
	UUID  string `json:"uuid" validate:"omitempty,max=8192,printascii"`
	Tag   string `json:"tag" validate:"omitempty,max=8192,printascii"`
	Force bool   `json:"force"`
}
