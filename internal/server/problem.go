package server

import (
	"encoding/json"
	"net/http"
)

// Problem types for RFC 7807 responses.
const (
	ProblemTypeBranding    = "https://brandkit.dev/problems/branding-error"
	ProblemTypeInternal    = "https://brandkit.dev/problems/internal-error"
	ProblemTypeRateLimited = "https://brandkit.dev/problems/rate-limited"
)

// Problem is an RFC 7807 Problem Details body.
// @Description RFC 7807 Problem Details error response.
type Problem struct {
	Type     string `json:"type" example:"https://brandkit.dev/problems/branding-error"`
	Title    string `json:"title" example:"Bad Request"`
	Status   int    `json:"status" example:"400"`
	Detail   string `json:"detail,omitempty" example:"primary_color: invalid color"`
	Instance string `json:"instance,omitempty" example:"/api/v1/branding"`
}

// WriteProblem writes p as application/problem+json. An empty Title is
// filled from the status text.
func WriteProblem(w http.ResponseWriter, p Problem) {
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	})
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeRateLimited,
		Status:   http.StatusTooManyRequests,
		Detail:   detail,
		Instance: instance,
	})
}
