package models

// WebPageFilterRequest carries the WebPage node and graph node types the
// page renderer produced for a product page
type WebPageFilterRequest struct {
	PageKind  string                 `json:"pageKind"` // product (default), checkout, other
	WebPage   map[string]interface{} `json:"webPage" binding:"required"`
	NodeTypes []string               `json:"nodeTypes,omitempty"`
}

// WebPageFilterResponse is the filtered WebPage node and node type list
type WebPageFilterResponse struct {
	WebPage   map[string]interface{} `json:"webPage"`
	NodeTypes []string               `json:"nodeTypes,omitempty"`
}
