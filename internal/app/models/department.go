package models

// Department is the scoping boundary for department-admin authorization
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
