package api

// CheckResponse is the response for a permission or role check.
type CheckResponse struct {
	Allowed bool `json:"allowed" description:"Whether the identity holds the capability"`
}

// RevokeAllResponse reports how many assignments a revoke-all touched.
type RevokeAllResponse struct {
	Revoked int `json:"revoked" description:"Number of assignments revoked"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}
